package tables

import "embed"

//go:embed data/*.csv
var embedded embed.FS

// Embedded serves the tables compiled into the binary.
func Embedded() FSProvider {
	return FSProvider{FS: embedded, Dir: "data"}
}
