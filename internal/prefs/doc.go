// Package prefs stores the find/replace preferences.
//
// A Store holds a fixed set of typed keys, each with a default. Values that
// differ from their default are explicit and are what Save writes to disk.
// Change listeners are notified synchronously, in registration order, and
// outside the store lock so a listener may read or set preferences itself.
//
// The file format follows the file extension: ".yaml" and ".yml" use YAML,
// everything else TOML. A store without a path keeps preferences in memory
// only.
//
// matchWholeWord and matchRegex are mutually exclusive: enabling one
// disables the other, and both changes are notified.
package prefs
