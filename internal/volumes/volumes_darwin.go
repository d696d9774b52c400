//go:build darwin

package volumes

const macVolumesDir = "/Volumes"

func platformRoots() ([]string, error) {
	return mountDirRoots(macVolumesDir)
}
