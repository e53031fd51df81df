/*
Package qname provides a structured representation of namespace-qualified
symbol names, in the canonical format `Namespace\Sub\name`.

Function and type names are compared case-insensitively, so every registry
table keys its entries by Key rather than by the raw spelling. The spelling
used at declaration time is kept for display.
*/
package qname
