package config

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// Expand replaces supported variables in a path string:
//
//	${PROJECT} - current directory name
//	${USER}    - current username
//	${HOME}    - home directory
//
// Unknown ${VAR} references are left untouched so remote-side environment
// expansion still works for them.
func Expand(path string) string {
	if path == "" || !strings.Contains(path, "${") {
		return path
	}

	replacements := map[string]string{
		"${PROJECT}": projectName(),
		"${USER}":    currentUser(),
		"${HOME}":    homeDir(),
	}

	for v, val := range replacements {
		if val != "" {
			path = strings.ReplaceAll(path, v, val)
		}
	}
	return path
}

func projectName() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Base(cwd)
}

func currentUser() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return os.Getenv("USER")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}
