// Package mailfs contains the core types and interfaces of the mail storage
// access layer: hierarchical paths, file nodes and the capability objects
// (reader, writer, iterator) used to read, write and enumerate them.
//
// Backends live in their own packages (see local and memfs) and are only ever
// reached through a [FileSystemFactory].
package mailfs
