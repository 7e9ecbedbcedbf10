package whatsapp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryPutBumpsRevision(t *testing.T) {
	r := NewRegistry()

	first := r.Put(Instance{Name: "sales", Status: StatusQRCode})
	assert.Equal(t, uint64(1), first.Revision)

	second := r.Put(Instance{Name: "sales", Status: StatusConnected})
	assert.Equal(t, uint64(2), second.Revision)

	stored, ok := r.Get("sales")
	require.True(t, ok)
	assert.Equal(t, StatusConnected, stored.Status)
	assert.False(t, stored.LastUpdate.IsZero())
}

func TestRegistryGetReturnsCopy(t *testing.T) {
	r := NewRegistry()
	r.Put(Instance{Name: "sales", Status: StatusQRCode, QRCode: "qr"})

	got, ok := r.Get("sales")
	require.True(t, ok)
	got.Status = StatusConnected
	got.QRCode = "tampered"

	stored, ok := r.Get("sales")
	require.True(t, ok)
	assert.Equal(t, StatusQRCode, stored.Status)
	assert.Equal(t, "qr", stored.QRCode)
}

func TestRegistryListSortedByName(t *testing.T) {
	r := NewRegistry()
	r.Put(Instance{Name: "support"})
	r.Put(Instance{Name: "billing"})
	r.Put(Instance{Name: "sales"})

	list := r.List()
	require.Len(t, list, 3)
	assert.Equal(t, "billing", list[0].Name)
	assert.Equal(t, "sales", list[1].Name)
	assert.Equal(t, "support", list[2].Name)
}

func TestRegistryDelete(t *testing.T) {
	r := NewRegistry()
	r.Put(Instance{Name: "sales"})

	assert.True(t, r.Delete("sales"))
	assert.False(t, r.Delete("sales"))

	_, ok := r.Get("sales")
	assert.False(t, ok)
}

func TestRegistryUpdateUnknownName(t *testing.T) {
	r := NewRegistry()

	_, err := r.Update("ghost", func(i *Instance) { i.Status = StatusConnected })
	assert.ErrorIs(t, err, ErrInstanceNotFound)
}

func TestCompareAndSetStatusApplies(t *testing.T) {
	r := NewRegistry()
	inst := r.Put(Instance{Name: "sales", Status: StatusQRCode, QRCode: "qr"})

	current, applied, err := r.CompareAndSetStatus("sales", inst.Revision, StatusConnected)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, StatusConnected, current.Status)
	assert.Empty(t, current.QRCode, "leaving the pairing states drops the QR")
	assert.Equal(t, inst.Revision+1, current.Revision)
}

func TestCompareAndSetStatusStaleRevision(t *testing.T) {
	r := NewRegistry()
	inst := r.Put(Instance{Name: "sales", Status: StatusQRCode})

	// A concurrent mutation lands after the caller captured the revision.
	_, err := r.Update("sales", func(i *Instance) { i.Status = StatusDisconnected })
	require.NoError(t, err)

	current, applied, err := r.CompareAndSetStatus("sales", inst.Revision, StatusConnecting)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, StatusDisconnected, current.Status, "stale writer must not win")
}

func TestCompareAndSetStatusKeepsQRWhileConnecting(t *testing.T) {
	r := NewRegistry()
	inst := r.Put(Instance{Name: "sales", Status: StatusQRCode, QRCode: "qr"})

	current, applied, err := r.CompareAndSetStatus("sales", inst.Revision, StatusConnecting)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, "qr", current.QRCode)
}
