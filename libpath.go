package avapi

import (
	"os"
	"path/filepath"
	"runtime"
)

// libraryNames returns the shared libraries to load, in load order.
// Apple builds of the SDK ship a single combined library.
func libraryNames() []string {
	if runtime.GOOS == "darwin" {
		return []string{"libIOTCAPIs_ALL.dylib"}
	}
	return []string{"libIOTCAPIs.so", "libAVAPIs.so"}
}

// libraryPaths lists candidate locations for libName, most specific first.
// The project-local lib directory is searched before the system loader path.
func libraryPaths(libDir, libName string) []string {
	var paths []string

	if libDir != "" {
		paths = append(paths, filepath.Join(libDir, libName))
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, "lib", libName),
			filepath.Join(exeDir, "..", "lib", libName),
		)
	}

	if wd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(wd, "lib", libName))
	}

	if root := findModuleRoot(); root != "" {
		paths = append(paths, filepath.Join(root, "lib", libName))
	}

	switch runtime.GOOS {
	case "darwin":
		paths = append(paths, "/usr/local/lib/"+libName, "/opt/homebrew/lib/"+libName)
	case "linux":
		paths = append(paths, "/usr/local/lib/"+libName, "/usr/lib/"+libName)
	}

	// Bare name: let the dynamic loader search LD_LIBRARY_PATH and friends.
	return append(paths, libName)
}

// findModuleRoot walks up from the working directory to the directory
// containing go.mod.
func findModuleRoot() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}
