/*
Copyright © 2025 Logicos Software

gp.go implements GlobalPlatform parameters and the GlobalPlatformPro
tool wrapper.

The lock key is the authentication key GlobalPlatform uses to authorize
card-management operations. Cards ship with a well-known default key;
"locking" a card replaces it. Every management operation on a locked
card must authenticate with the current key, so losing the persisted
key record makes the card unmanageable.
*/
package cmd

import "strings"

// DefaultGPKey is the well-known factory-default GlobalPlatform lock
// key. A card that has never been re-locked uses it.
const DefaultGPKey = "404142434445464748494A4B4C4D4E4F"

// GPParameters holds the lock key for GlobalPlatform operations.
type GPParameters struct {
	Key string `toml:"key"` // 32 hex characters, uppercase
}

// DefaultGPParameters returns the factory-default lock parameters.
func DefaultGPParameters() *GPParameters {
	return &GPParameters{Key: DefaultGPKey}
}

// CheckRequirements normalizes the key to uppercase and validates it.
// Safe to call repeatedly; called again before every lock operation.
func (p *GPParameters) CheckRequirements() error {
	key, err := checkHexField("GP lock key", p.Key, 32)
	if err != nil {
		return err
	}
	p.Key = key
	return nil
}

// Equal reports structural equality after normalization. It drives the
// lock-key reconciliation decision: equal means nothing to do.
func (p *GPParameters) Equal(o *GPParameters) bool {
	if p == nil || o == nil {
		return p == o
	}
	return strings.EqualFold(p.Key, o.Key)
}

// GenerateGPParameters returns fresh random lock parameters.
func GenerateGPParameters() (*GPParameters, error) {
	key, err := randomHex(32)
	if err != nil {
		return nil, err
	}
	return &GPParameters{Key: key}, nil
}

// GP wraps the GlobalPlatformPro command line tool.
type GP struct {
	invocation []string // e.g. ["java", "-jar", "gp.jar"]
	runner     Runner
	verbose    bool
	log        *Logger
}

// defaultGPInvocation is how GlobalPlatformPro is normally run.
var defaultGPInvocation = []string{"java", "-jar", "gp.jar"}

// NewGP creates the GlobalPlatformPro wrapper. invocation overrides the
// default "java -jar gp.jar" command, for installs that ship a gp
// wrapper script.
func NewGP(log *Logger, runner Runner, invocation []string, verbose bool) *GP {
	if len(invocation) == 0 {
		invocation = defaultGPInvocation
	}
	return &GP{
		invocation: invocation,
		runner:     runner,
		verbose:    verbose,
		log:        log.WithComponent("gp"),
	}
}

// command assembles the tool name and argument list for one
// GlobalPlatformPro invocation. current selects the authentication key;
// nil means the factory default, which GlobalPlatformPro assumes when
// no --key is given.
func (g *GP) command(current *GPParameters, args ...string) (string, []string) {
	full := make([]string, 0, len(g.invocation)+len(args)+3)
	full = append(full, g.invocation[1:]...)
	if g.verbose {
		full = append(full, "--verbose")
	}
	if current != nil {
		full = append(full, "--key", current.Key)
	}
	full = append(full, args...)
	return g.invocation[0], full
}

// Uninstall removes an applet from the card. With allowFailure (the
// default in every production sequence) a non-zero exit is logged and
// swallowed: "applet not present" is the expected state on first
// provisioning and the exit code cannot distinguish it from anything
// else.
func (g *GP) Uninstall(capFile string, current *GPParameters, allowFailure bool) error {
	if current != nil {
		if err := current.CheckRequirements(); err != nil {
			return err
		}
	}
	g.log.Info("uninstalling applet", "cap", capFile)
	tool, args := g.command(current, "--uninstall", capFile)
	if err := g.runner.Run(tool, args...); err != nil {
		if allowFailure {
			g.log.Info("uninstall failed, maybe because it is not installed: continuing anyway", "cap", capFile)
			return nil
		}
		return err
	}
	return nil
}

// Install loads an applet CAP file onto the card. defaultSelected makes
// the applet the card's default-selected application. extra carries
// applet-specific install arguments (e.g. the OpenPGP AID).
func (g *GP) Install(capFile string, current *GPParameters, defaultSelected bool, extra ...string) error {
	if current != nil {
		if err := current.CheckRequirements(); err != nil {
			return err
		}
	}
	g.log.Info("installing applet", "cap", capFile)
	args := []string{"--install", capFile}
	if defaultSelected {
		args = append(args, "--default")
	}
	args = append(args, extra...)
	tool, cmdArgs := g.command(current, args...)
	return g.runner.Run(tool, cmdArgs...)
}

// LockCard sets the GlobalPlatform lock key to desired, authenticating
// with current (factory default when current is nil). Both records are
// re-validated immediately before use: locking with a malformed key
// would brick the card.
func (g *GP) LockCard(desired, current *GPParameters) error {
	if current == nil {
		current = DefaultGPParameters()
	}
	if err := desired.CheckRequirements(); err != nil {
		return err
	}
	if err := current.CheckRequirements(); err != nil {
		return err
	}
	g.log.Info("changing GP lock key")
	tool, args := g.command(nil, "--key", current.Key, "--lock", desired.Key)
	return g.runner.Run(tool, args...)
}
