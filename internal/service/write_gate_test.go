package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteGate(t *testing.T) {
	gate := NewWriteGate()

	releaseA, err := gate.EnterWrite()
	require.NoError(t, err)
	releaseB, err := gate.EnterWrite()
	require.NoError(t, err)

	_, err = gate.EnterRestore()
	require.ErrorIs(t, err, ErrRestoreInProgress)

	releaseA()
	releaseB()

	releaseRestore, err := gate.EnterRestore()
	require.NoError(t, err)

	_, err = gate.EnterWrite()
	require.ErrorIs(t, err, ErrRestoreInProgress)
	_, err = gate.EnterRestore()
	require.ErrorIs(t, err, ErrRestoreInProgress)

	releaseRestore()

	release, err := gate.EnterWrite()
	require.NoError(t, err)
	release()
}

func TestNilWriteGateAdmitsEverything(t *testing.T) {
	var gate *WriteGate

	release, err := gate.EnterWrite()
	require.NoError(t, err)
	release()

	release, err = gate.EnterRestore()
	require.NoError(t, err)
	release()
}
