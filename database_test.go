package main

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSettingsRoundTrip(t *testing.T) {
	db := openTestDB(t)

	if got := db.GetSetting("missing"); got != "" {
		t.Errorf("missing setting = %q, want empty", got)
	}
	if err := db.SetSetting("k", "v1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := db.GetSetting("k"); got != "v1" {
		t.Errorf("setting = %q, want v1", got)
	}
	if err := db.SetSetting("k", "v2"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if got := db.GetSetting("k"); got != "v2" {
		t.Errorf("setting after upsert = %q, want v2", got)
	}
}

func TestRecordMatchFoldsStats(t *testing.T) {
	db := openTestDB(t)

	err := db.RecordMatch(MatchRecord{
		ID:          "m1",
		Duration:    42.5,
		Winner:      "Alice",
		PlayerCount: 2,
		Players: []MatchPlayerRecord{
			{Nickname: "Alice", LivesLeft: 2, Won: true},
			{Nickname: "Bob", LivesLeft: 0},
		},
	})
	if err != nil {
		t.Fatalf("record match: %v", err)
	}

	alice, err := db.GetStats("Alice")
	if err != nil || alice == nil {
		t.Fatalf("stats Alice: %v %v", alice, err)
	}
	if alice.Matches != 1 || alice.Wins != 1 || alice.Losses != 0 || alice.Draws != 0 {
		t.Errorf("Alice stats = %+v, want 1 match 1 win", alice)
	}
	bob, _ := db.GetStats("Bob")
	if bob == nil || bob.Losses != 1 || bob.Wins != 0 {
		t.Errorf("Bob stats = %+v, want 1 loss", bob)
	}

	// A draw increments draws for both and touches neither wins nor losses
	err = db.RecordMatch(MatchRecord{
		ID:          "m2",
		Draw:        true,
		PlayerCount: 2,
		Players: []MatchPlayerRecord{
			{Nickname: "Alice"},
			{Nickname: "Bob"},
		},
	})
	if err != nil {
		t.Fatalf("record draw: %v", err)
	}
	alice, _ = db.GetStats("Alice")
	if alice.Matches != 2 || alice.Wins != 1 || alice.Draws != 1 {
		t.Errorf("Alice stats after draw = %+v, want 2 matches 1 win 1 draw", alice)
	}
}

func TestGetStatsUnknownNickname(t *testing.T) {
	db := openTestDB(t)
	row, err := db.GetStats("nobody")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if row != nil {
		t.Errorf("stats for unseen nickname = %+v, want nil", row)
	}
}

func TestLeaderboardOrder(t *testing.T) {
	db := openTestDB(t)

	matches := []MatchRecord{
		{ID: "m1", Winner: "Alice", PlayerCount: 2, Players: []MatchPlayerRecord{{Nickname: "Alice", Won: true}, {Nickname: "Bob"}}},
		{ID: "m2", Winner: "Alice", PlayerCount: 2, Players: []MatchPlayerRecord{{Nickname: "Alice", Won: true}, {Nickname: "Cara"}}},
		{ID: "m3", Winner: "Bob", PlayerCount: 2, Players: []MatchPlayerRecord{{Nickname: "Bob", Won: true}, {Nickname: "Cara"}}},
	}
	for _, rec := range matches {
		if err := db.RecordMatch(rec); err != nil {
			t.Fatalf("record %s: %v", rec.ID, err)
		}
	}

	board, err := db.GetLeaderboard(10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board) != 3 {
		t.Fatalf("entries = %d, want 3", len(board))
	}
	if board[0].Nickname != "Alice" || board[0].Wins != 2 {
		t.Errorf("board[0] = %+v, want Alice with 2 wins", board[0])
	}
	if board[1].Nickname != "Bob" || board[1].Wins != 1 {
		t.Errorf("board[1] = %+v, want Bob with 1 win", board[1])
	}

	limited, _ := db.GetLeaderboard(1)
	if len(limited) != 1 {
		t.Errorf("limited entries = %d, want 1", len(limited))
	}
}

func TestRecordMatchDuplicateIDFails(t *testing.T) {
	db := openTestDB(t)
	rec := MatchRecord{ID: "m1", PlayerCount: 2, Draw: true, Players: []MatchPlayerRecord{{Nickname: "Alice"}, {Nickname: "Bob"}}}
	if err := db.RecordMatch(rec); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if err := db.RecordMatch(rec); err == nil {
		t.Error("duplicate match id accepted")
	}
	// The failed transaction must not double-count stats
	alice, _ := db.GetStats("Alice")
	if alice == nil || alice.Matches != 1 {
		t.Errorf("Alice matches = %+v, want 1", alice)
	}
}
