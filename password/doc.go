// Package password parses stored admin credential descriptors and verifies
// presented passwords against them.
//
// A descriptor string is parsed once, at configuration-load time, into a typed
// [Descriptor] variant; requests never re-parse or branch on string prefixes.
// Verification never panics and never fails open: any descriptor the code does
// not recognize, and any internal verification error, yields false.
package password
