package match

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParticipantKey(t *testing.T) {
	k := MemberKey("m1")
	assert.True(t, k.IsMember())
	assert.Equal(t, "member:m1", k.String())
	id, ok := k.MemberID()
	assert.True(t, ok)
	assert.Equal(t, "m1", id)
	_, ok = k.GuestID()
	assert.False(t, ok)

	parsed, err := ParseParticipantKey("guest:abc")
	require.NoError(t, err)
	assert.Equal(t, GuestKey("abc"), parsed)

	for _, bad := range []string{"", "member:", "admin:1", "m1"} {
		_, err := ParseParticipantKey(bad)
		assert.Equal(t, KindValidationFailed, KindOf(err), bad)
	}
	assert.False(t, ParticipantKey{}.Valid())
}

func TestMatchStartAndManagement(t *testing.T) {
	now := time.Now()
	m := &Match{CreatorID: "m1", CreatedAt: now.Add(-time.Hour), Status: StatusActive}
	assert.True(t, m.HasStarted(now))
	assert.Equal(t, m.CreatedAt, m.EffectiveStart())

	start := now.Add(time.Hour)
	m.StartTime = &start
	assert.False(t, m.HasStarted(now))
	assert.True(t, m.HasStarted(start))
	assert.Equal(t, start, m.EffectiveStart())

	assert.True(t, m.CanManage("m1", false))
	assert.True(t, m.CanManage("m2", true))
	assert.False(t, m.CanManage("m2", false))
}

func TestWeaponClass(t *testing.T) {
	for _, c := range WeaponClasses {
		assert.True(t, c.Valid())
		assert.Equal(t, 10, c.MaxShotValue())
	}
	assert.False(t, WeaponClass("Z").Valid())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(ErrMatchNotFound))
	assert.Equal(t, KindValidationFailed, KindOf(fmt.Errorf("%w: shot %q", ErrInvalidShot, "11")))
	assert.Equal(t, KindInternal, KindOf(fmt.Errorf("disk full")))
}

func TestRandomCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := RandomCode()
		require.NoError(t, err)
		assert.Len(t, code, CodeLength)
		assert.NotContains(t, code, "0")
		assert.NotContains(t, code, "O")
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1)
}
