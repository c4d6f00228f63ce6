/*
Copyright © 2025 Logicos Software

produce.go implements the decision logic shared by both production
procedures: parameter resolution, lock-key and PIN reconciliation, and
idempotent key loading.

Every run is one strictly sequential pass. Later steps depend on the
resolved values and card state produced by earlier steps, there is one
card in one reader, and the operator physically reinserts the card
between install and initialize, so nothing here is concurrent,
retried, or rolled back. The first tool failure aborts the run; the
sequence is designed so re-running it is always safe.
*/
package cmd

import (
	"fmt"
	"os"
)

// resolveGPParameters resolves the current and desired GlobalPlatform
// lock parameters from a GPConfig.
//
// The desired record is load-or-generate: a missing file means this is
// the first run and a fresh key is invented and persisted. The current
// record is load-only: it describes the key already on the card, which
// cannot be invented. A nil result means "no file configured": factory
// default on the current side, "restore factory default" on the
// desired side.
func resolveGPParameters(log *Logger, cfg GPConfig) (current, desired *GPParameters, err error) {
	if cfg.DesiredParametersFilename != "" {
		desired, err = LoadOrGenerateGPParameters(log, cfg.DesiredParametersFilename)
		if err != nil {
			return nil, nil, err
		}
	}
	if cfg.CurrentParametersFilename != "" {
		current, err = LoadGPParameters(log, cfg.CurrentParametersFilename)
		if err != nil {
			return nil, nil, err
		}
	}
	return current, desired, nil
}

// reconcileLockKey compares the desired lock parameters against the
// current ones and performs the one lock operation needed, if any:
//
//	desired   current          action
//	none      none             nothing (card already on factory default)
//	none      present          restore factory default, auth with current
//	present   none or differs  lock to desired, auth with current/default
//	present   equal            nothing (already correct)
func reconcileLockKey(log *Logger, gp *GP, desired, current *GPParameters) error {
	switch {
	case desired == nil && current == nil:
		log.Debug("no lock parameters configured, leaving lock key alone")
		return nil
	case desired == nil:
		log.Info("changing GP lock key back to factory default")
		return gp.LockCard(DefaultGPParameters(), current)
	case desired.Equal(current):
		log.Info("GP lock key already set as desired")
		return nil
	default:
		return gp.LockCard(desired, current)
	}
}

// reconcilePins applies the same tie-break table as reconcileLockKey to
// the OpenPGP PIN pair, using the applet's PIN-change operation.
func reconcilePins(log *Logger, pgp *SmartPGPApplet, desired, current *OpenPGPPins) error {
	switch {
	case desired == nil && current == nil:
		log.Debug("no PIN parameters configured, leaving PINs alone")
		return nil
	case desired == nil:
		log.Info("changing OpenPGP PINs back to factory defaults")
		return pgp.ChangePins(DefaultOpenPGPPins(), current)
	case desired.Equal(current):
		log.Info("OpenPGP PINs already set as desired")
		return nil
	default:
		return pgp.ChangePins(desired, current)
	}
}

// promptReinsert tells the operator to cycle the card between install
// and initialize. The following tool invocation blocks (--wait) until
// the card is back; the operator is the scheduler here, there is no
// timeout.
func promptReinsert() {
	fmt.Fprint(os.Stderr, "\n\nPlease remove the card and re-insert it\n\n")
}

// verifiedKeyLoading is a key-loading request whose bundle has passed
// local verification, together with the passphrase that decoded it.
type verifiedKeyLoading struct {
	KeyLoading
	passphrase string
}

// verifyKeyLoading checks every PKCS#12 bundle locally before the card
// is touched, so a bad path or passphrase aborts the run while it is
// still a no-op.
func verifyKeyLoading(log *Logger, requests []KeyLoading) ([]verifiedKeyLoading, error) {
	verified := make([]verifiedKeyLoading, 0, len(requests))
	for _, req := range requests {
		passphrase, err := req.Key.Verify(log)
		if err != nil {
			return nil, err
		}
		verified = append(verified, verifiedKeyLoading{KeyLoading: req, passphrase: passphrase})
	}
	return verified, nil
}

// loadKeys imports the requested keys in order, skipping any whose
// label is already present on the card. The card's credentials are
// enumerated once, not per request; importing a key never makes an
// earlier label disappear.
func loadKeys(log *Logger, gids *GidsApplet, p15 *Pkcs15Tool, params *GidsParameters, requests []verifiedKeyLoading) error {
	if len(requests) == 0 {
		return nil
	}

	labels, err := p15.EnumerateCertificates()
	if err != nil {
		return err
	}
	present := make(map[string]bool, len(labels))
	for _, label := range labels {
		present[label] = true
	}

	for _, req := range requests {
		if present[req.Label] {
			log.Info("key already on card, skipping import", "label", req.Label)
			continue
		}
		if err := gids.ImportKey(params, req.KeyLoading, req.passphrase); err != nil {
			return err
		}
	}
	return nil
}
