package hook

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/compozy/tagrelease/internal/domain"
)

// Environment variables exposed to command hooks.
const (
	EnvNext        = "TAG_RELEASE_NEXT"
	EnvLatest      = "TAG_RELEASE_LATEST"
	EnvProjectRoot = "TAG_RELEASE_PROJECT_ROOT"
	EnvProjectName = "TAG_RELEASE_PROJECT_NAME"
)

// Shell runs command hooks.
var Shell = []string{"sh", "-c"}

// Command returns a hook that runs cmd through the shell in the project root.
// A non-zero exit aborts the release with the command's stderr.
func Command(cmd string) Func {
	return func(ctx context.Context, project domain.Project, tags domain.TagResult) error {
		args := append(append([]string(nil), Shell[1:]...), cmd)
		c := exec.CommandContext(ctx, Shell[0], args...)
		c.Dir = project.Root
		c.Env = append(os.Environ(),
			EnvNext+"="+tags.Next,
			EnvLatest+"="+tags.Latest,
			EnvProjectRoot+"="+project.Root,
			EnvProjectName+"="+project.Name,
		)
		var stderr bytes.Buffer
		c.Stdout = os.Stdout
		c.Stderr = io.MultiWriter(os.Stderr, &stderr)
		if err := c.Run(); err != nil {
			var exitErr *exec.ExitError
			if !errors.As(err, &exitErr) {
				return err
			}
			msg := strings.TrimSpace(stderr.String())
			if msg == "" {
				msg = exitErr.Error()
			}
			return &domain.AbortError{Msg: msg, Err: err}
		}
		return nil
	}
}

// Commands builds a Set from shell commands keyed by hook name.
func Commands(cmds map[domain.HookName]string) Set {
	set := make(Set, len(cmds))
	for name, cmd := range cmds {
		set[name] = Command(cmd)
	}
	return set
}
