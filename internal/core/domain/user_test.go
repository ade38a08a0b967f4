package domain

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestNewUserState_DefaultsToVoter(t *testing.T) {
	u := NewUserState("u1", "player", "0001")
	v := u.View()

	if !v.IsVoter || v.StrikeCount != 0 || v.Blocked || v.Warned {
		t.Errorf("unexpected defaults: %+v", v)
	}
	if !v.LastCommand.IsZero() {
		t.Errorf("expected zero last command, got %v", v.LastCommand)
	}
}

func TestRestoreUserState(t *testing.T) {
	rec := UserRecord{
		ID:            "u1",
		Name:          "player",
		Discriminator: "0001",
		AccessTime:    time.Unix(1700000000, 0),
		StrikeCount:   3,
		Blocked:       true,
		IsVoter:       false,
		Warned:        true,
	}

	u := RestoreUserState(rec)
	if diff := cmp.Diff(rec, u.Snapshot()); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestUserState_RecordSuccessfulCommand(t *testing.T) {
	now := time.Unix(1700000000, 0)

	t.Run("clean user", func(t *testing.T) {
		u := NewUserState("u1", "player", "0001")
		if u.RecordSuccessfulCommand(now) {
			t.Error("expected no clear for a clean user")
		}
		if !u.View().LastCommand.Equal(now) {
			t.Error("expected last command to be stamped")
		}
	})

	t.Run("clears strikes, block and warning", func(t *testing.T) {
		u := RestoreUserState(UserRecord{ID: "u1", StrikeCount: 4, Blocked: true, Warned: true})
		if !u.RecordSuccessfulCommand(now) {
			t.Error("expected clear to be reported")
		}
		v := u.View()
		if v.StrikeCount != 0 || v.Blocked || v.Warned {
			t.Errorf("expected cleared state, got %+v", v)
		}
	})
}

func TestUserState_RecordStrike(t *testing.T) {
	u := NewUserState("u1", "player", "0001")

	for i := 1; i < 3; i++ {
		count, blocked := u.RecordStrike(3, true)
		if count != i || blocked {
			t.Fatalf("strike %d: got count %d blocked %v", i, count, blocked)
		}
	}

	count, blocked := u.RecordStrike(3, true)
	if count != 3 || !blocked {
		t.Fatalf("expected block at third strike, got count %d blocked %v", count, blocked)
	}

	_, blocked = u.RecordStrike(3, true)
	if blocked {
		t.Error("block transition should only be reported once")
	}
}

func TestUserState_RecordStrike_NoAutoBlock(t *testing.T) {
	u := NewUserState("u1", "player", "0001")
	for i := 0; i < 5; i++ {
		u.RecordStrike(2, false)
	}
	if u.View().Blocked {
		t.Error("user should not be blocked when auto block is off")
	}
}

func TestUserState_MarkWarned(t *testing.T) {
	u := NewUserState("u1", "player", "0001")

	if !u.MarkWarned() {
		t.Error("expected first warning")
	}
	if u.MarkWarned() {
		t.Error("expected second warning to be suppressed")
	}

	u.RecordStrike(10, true)
	u.RecordSuccessfulCommand(time.Now())
	if !u.MarkWarned() {
		t.Error("expected warning to re-arm after a successful command")
	}
}

func TestUserState_SetBlocked(t *testing.T) {
	u := RestoreUserState(UserRecord{ID: "u1", StrikeCount: 7, Warned: true})

	if !u.SetBlocked(true) {
		t.Error("expected block to change state")
	}
	if u.View().StrikeCount != 7 {
		t.Error("blocking should keep strikes")
	}
	if !u.SetBlocked(false) {
		t.Error("expected unblock to change state")
	}
	if v := u.View(); v.StrikeCount != 0 || v.Warned {
		t.Errorf("unblock should clear strikes and warning, got %+v", v)
	}
}

func TestUserState_SetVoterAndRename(t *testing.T) {
	u := NewUserState("u1", "player", "0001")

	if u.SetVoter(true) {
		t.Error("already a voter")
	}
	if !u.SetVoter(false) || u.View().IsVoter {
		t.Error("expected voter flag to flip off")
	}
	if !u.Rename("newname", "0002") {
		t.Error("expected rename")
	}
	if u.Rename("newname", "0002") {
		t.Error("same name should not report a change")
	}
}

func TestAcquireGate(t *testing.T) {
	u := RestoreUserState(UserRecord{ID: "u1"})

	release, err := u.AcquireGate(context.Background())
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := u.AcquireGate(ctx); err == nil {
		t.Fatal("expected a held gate to time out")
	}

	release()
	again, err := u.AcquireGate(context.Background())
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	again()
}
