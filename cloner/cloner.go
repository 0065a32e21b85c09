// Package cloner materializes selected candidates as local git checkouts.
package cloner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/tools/go/vcs"

	"github.com/Hila-Propack/eto-manufacturing-dashboard/domain"
)

var (
	DefaultDirectory = "cloned_repos"
	DefaultMax       = 10

	ErrNoCloneURL  = errors.New("candidate has no clone URL")
	ErrUnsafePath  = errors.New("candidate identity is not a safe path segment")
	ErrInterrupted = errors.New("cloning interrupted")
)

func init() {
	// Set environment variables telling git to avoid triggering interactive
	// prompts.
	os.Setenv("GIT_TERMINAL_PROMPT", "0")
	os.Setenv("GIT_SSH_COMMAND", "ssh -o BatchMode=yes")
}

type Config struct {
	Directory string // Parent directory for checkouts.
	Max       int    // Maximum number of candidates to clone.
}

func NewConfig() *Config {
	cfg := &Config{
		Directory: DefaultDirectory,
		Max:       DefaultMax,
	}
	return cfg
}

// Materializer produces a local copy of the repository at url in dst.
type Materializer interface {
	Materialize(dst string, url string) error
}

// GitMaterializer drives the git CLI.  An existing checkout is updated in
// place; otherwise a fresh clone is made, retried once after clearing the
// destination.
type GitMaterializer struct {
	cmd *vcs.Cmd
	Log *log.Entry
}

func NewGitMaterializer() *GitMaterializer {
	gm := &GitMaterializer{
		cmd: vcs.ByCmd("git"),
		Log: log.WithField("component", "cloner"),
	}
	return gm
}

func (gm *GitMaterializer) Materialize(dst string, url string) error {
	if err := os.MkdirAll(filepath.Dir(dst), os.FileMode(int(0755))); err != nil {
		return err
	}

	if fi, err := os.Stat(filepath.Join(dst, ".git")); err == nil && fi.IsDir() {
		err := gm.cmd.Download(dst)
		if err == nil {
			return nil
		}
		gm.logger().WithField("dst", dst).Warnf("Updating existing checkout failed, recloning: %s", err)
	} else if err := gm.cmd.Create(dst, url); err == nil {
		return nil
	}

	if err := os.RemoveAll(dst); err != nil {
		return err
	}
	// Retry after resetting the directory.
	if err := gm.cmd.Create(dst, url); err != nil {
		return err
	}
	return nil
}

func (gm *GitMaterializer) logger() *log.Entry {
	if gm.Log == nil {
		return log.NewEntry(log.StandardLogger())
	}
	return gm.Log
}

// Report summarizes a CloneAll pass.
type Report struct {
	Attempted int
	Cloned    []string
	Failed    map[string]string
}

func (r *Report) Succeeded() int { return len(r.Cloned) }

type Cloner struct {
	Config       *Config
	Materializer Materializer
	// Redact, when set, scrubs credentials from recorded clone errors.
	Redact func(string) string
	Log    *log.Entry
}

func New(cfg *Config, m Materializer) *Cloner {
	if cfg == nil {
		cfg = NewConfig()
	}
	if m == nil {
		m = NewGitMaterializer()
	}
	c := &Cloner{
		Config:       cfg,
		Materializer: m,
		Log:          log.WithField("component", "cloner"),
	}
	return c
}

// Path returns the checkout location for c.
func (cl *Cloner) Path(c *domain.Candidate) (string, error) {
	for _, segment := range []string{c.Owner(), c.Name()} {
		if segment == "" || segment == "." || segment == ".." || strings.ContainsAny(segment, `/\`) {
			return "", ErrUnsafePath
		}
	}
	return filepath.Join(cl.Config.Directory, c.Owner(), c.Name()), nil
}

// CloneAll materializes up to Config.Max candidates sequentially, in the
// order given.  A failure is recorded on that candidate alone and the loop
// moves on.  Cancelling ctx stops before the next candidate.
func (cl *Cloner) CloneAll(ctx context.Context, cs []*domain.Candidate) (*Report, error) {
	report := &Report{
		Cloned: []string{},
		Failed: map[string]string{},
	}

	if cl.Config.Max > 0 && len(cs) > cl.Config.Max {
		cs = cs[:cl.Config.Max]
	}

	if err := os.MkdirAll(cl.Config.Directory, os.FileMode(int(0755))); err != nil {
		return report, fmt.Errorf("creating clone directory %q: %s", cl.Config.Directory, err)
	}

	for i, c := range cs {
		select {
		case <-ctx.Done():
			return report, ErrInterrupted
		default:
		}

		if c.Cloned() {
			cl.logger().WithField("repo", c.Key()).Debug("Already cloned, skipping")
			continue
		}

		report.Attempted++
		cl.logger().WithField("repo", c.Key()).WithField("n", fmt.Sprintf("%v/%v", i+1, len(cs))).Info("Cloning")

		path, err := cl.clone(c)
		if err != nil {
			msg := err.Error()
			if cl.Redact != nil {
				msg = cl.Redact(msg)
			}
			c.RecordCloneFailure(errors.New(msg))
			report.Failed[c.Key()] = msg
			cl.logger().WithField("repo", c.Key()).Errorf("Clone failed: %s", msg)
			continue
		}
		if err := c.MarkCloned(path); err != nil {
			cl.logger().WithField("repo", c.Key()).Warnf("Marking clone: %s", err)
			continue
		}
		report.Cloned = append(report.Cloned, c.Key())
	}

	cl.logger().WithField("attempted", report.Attempted).WithField("cloned", report.Succeeded()).WithField("failed", len(report.Failed)).Info("Cloning complete")
	return report, nil
}

func (cl *Cloner) clone(c *domain.Candidate) (string, error) {
	url := c.CloneURL()
	if url == "" {
		return "", ErrNoCloneURL
	}
	path, err := cl.Path(c)
	if err != nil {
		return "", err
	}
	if err := cl.Materializer.Materialize(path, url); err != nil {
		return "", pkgerrors.Wrapf(err, "cloning %v into %v", url, path)
	}
	return path, nil
}

func (cl *Cloner) logger() *log.Entry {
	if cl.Log == nil {
		return log.NewEntry(log.StandardLogger())
	}
	return cl.Log
}
