package repository

import "testing"

func TestBuildLikeConditionByDialect(t *testing.T) {
	condition, argCount := buildLikeConditionByDialect("sqlite", []string{"email", " ", "claimed_by_username"})
	if argCount != 2 {
		t.Fatalf("arg count want 2 got %d", argCount)
	}
	want := "email LIKE ? OR claimed_by_username LIKE ?"
	if condition != want {
		t.Fatalf("sqlite condition mismatch, want %s got %s", want, condition)
	}
}

func TestBuildLikeConditionPostgresUsesILike(t *testing.T) {
	condition, _ := buildLikeConditionByDialect("postgresql", []string{"username"})
	if condition != "username ILIKE ?" {
		t.Fatalf("postgres condition mismatch, got %s", condition)
	}
}

func TestRepeatLikeArgs(t *testing.T) {
	args := repeatLikeArgs("%demo%", 3)
	if len(args) != 3 {
		t.Fatalf("args length want 3 got %d", len(args))
	}
	for i, arg := range args {
		if arg != "%demo%" {
			t.Fatalf("arg[%d] mismatch: %v", i, arg)
		}
	}
}

func TestDBDialectNameDefaultsToSQLite(t *testing.T) {
	if got := dbDialectName(nil); got != "sqlite" {
		t.Fatalf("dialect want sqlite got %s", got)
	}
}
