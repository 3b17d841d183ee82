package version

import "fmt"

type Version struct {
	MajorNumber int
	MinorNumber int
	PatchNumber int
}

// String formats the version as major.minor.patch
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.MajorNumber, v.MinorNumber, v.PatchNumber)
}

var AppVersion = Version{
	MajorNumber: 0,
	MinorNumber: 3,
	PatchNumber: 1,
}
