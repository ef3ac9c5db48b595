package allocator

// HeaderSize exposes the package-private header size to the external
// allocator_test package, which needs it to verify the accounting
// invariants in spec.md §8 without duplicating the block layout.
const HeaderSize = headerSize
