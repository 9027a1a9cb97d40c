package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goout/internal/config"
)

type fakeConn struct {
	subjects []string
	payloads [][]byte
	drained  bool
}

func (f *fakeConn) Publish(subj string, data []byte) error {
	f.subjects = append(f.subjects, subj)
	f.payloads = append(f.payloads, data)
	return nil
}

func (f *fakeConn) Drain() error {
	f.drained = true
	return nil
}

func TestNATSPublisher(t *testing.T) {
	fc := &fakeConn{}
	p := newNATSPublisher(fc, "")

	ev := Event{Type: Created, Kind: "item", ID: "abc", OwnerID: "u1", ImageCount: 2, At: time.Unix(0, 0).UTC()}
	require.NoError(t, p.Publish(context.Background(), ev))

	require.Len(t, fc.subjects, 1)
	assert.Equal(t, "goout.item.created", fc.subjects[0])

	var got Event
	require.NoError(t, json.Unmarshal(fc.payloads[0], &got))
	assert.Equal(t, ev, got)

	require.NoError(t, p.Close())
	assert.True(t, fc.drained)
}

func TestNATSPublisher_CancelledContext(t *testing.T) {
	fc := &fakeConn{}
	p := newNATSPublisher(fc, "mk")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Publish(ctx, Event{Type: Deleted, Kind: "hotel"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, fc.subjects)
}

func TestNewNATS_Disabled(t *testing.T) {
	p, err := NewNATS(config.NATSConfig{})
	require.NoError(t, err)
	assert.Equal(t, Noop(), p)
	assert.NoError(t, p.Publish(context.Background(), Event{}))
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "goout.package.deleted", Subject("goout", "package", Deleted))
}
