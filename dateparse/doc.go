// Package dateparse parses the time expressions used by dashboard searches
// ("-24h", "-7d@d", "now", "10/19/2026:00:00:00") and provides calendar and
// elapsed-time helpers built on the same conventions.
package dateparse
