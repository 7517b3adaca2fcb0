package installer

import (
	"os"
	"os/exec"
)

// spawnDetached starts path with dir as working directory and releases the
// child so it outlives this process.
func spawnDetached(path, dir string) (int, error) {
	cmd := exec.Command(path)
	cmd.Dir = dir
	cmd.SysProcAttr = detachedAttr()

	if err := cmd.Start(); err != nil {
		return 0, err
	}

	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		return pid, err
	}
	return pid, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
