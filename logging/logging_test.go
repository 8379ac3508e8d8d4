package logging

import "testing"

func TestNoOp_DoesNotPanic(t *testing.T) {
	log := NoOp()
	log.Debugf("x=%d", 1)
	log.Infof("x=%d", 1)
	log.Warnf("x=%d", 1)
	log.Errorf("x=%d", 1)
}

func TestNoOp_SatisfiesLogger(t *testing.T) {
	var _ Logger = NoOp()
}
