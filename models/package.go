package models

// PackageKind is one of the fixed decoration packages.
type PackageKind string

const (
	PackageBasic   PackageKind = "Basic"
	PackagePopular PackageKind = "Popular"
	PackageAdvance PackageKind = "Advance"
	PackageCustom  PackageKind = "Custom Package"
)

var packageKinds = []PackageKind{PackageBasic, PackagePopular, PackageAdvance, PackageCustom}

// ParsePackageKind matches raw exactly against the known package names.
func ParsePackageKind(raw string) (PackageKind, bool) {
	for _, k := range packageKinds {
		if string(k) == raw {
			return k, true
		}
	}
	return "", false
}
