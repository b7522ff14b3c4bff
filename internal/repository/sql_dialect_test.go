package repository

import (
	"strings"
	"testing"
)

func TestJSONPathTextExprByDialectSQLite(t *testing.T) {
	got := jsonPathTextExprByDialect("sqlite", "rules_json", "audience", "target")
	want := "json_extract(rules_json, '$.\"audience\".\"target\"')"
	if got != want {
		t.Fatalf("sqlite json expr mismatch, want %s got %s", want, got)
	}
}

func TestJSONPathTextExprByDialectPostgres(t *testing.T) {
	got := jsonPathTextExprByDialect("postgres", "rules_json", "audience", "target")
	want := "(rules_json::jsonb #>> '{audience,target}')"
	if got != want {
		t.Fatalf("postgres json expr mismatch, want %s got %s", want, got)
	}
}

func TestBuildLikeCondition(t *testing.T) {
	condition, argCount := buildLikeCondition(nil, []string{"code", " ", "name"})
	if argCount != 2 {
		t.Fatalf("arg count want 2 got %d", argCount)
	}
	if condition != "(code LIKE ? OR name LIKE ?)" {
		t.Fatalf("unexpected condition: %s", condition)
	}

	condition, _ = buildLikeConditionByDialect("postgres", []string{"code"})
	if !strings.Contains(condition, "ILIKE") {
		t.Fatalf("postgres condition should use ILIKE, got %s", condition)
	}

	condition, argCount = buildLikeCondition(nil, nil)
	if condition != "1 = 1" || argCount != 0 {
		t.Fatalf("empty columns should produce tautology, got %s/%d", condition, argCount)
	}
}

func TestRepeatLikeArgs(t *testing.T) {
	args := repeatLikeArgs("%test%", 3)
	if len(args) != 3 {
		t.Fatalf("args len want 3 got %d", len(args))
	}
	for idx, arg := range args {
		if arg != "%test%" {
			t.Fatalf("args[%d] want %%test%% got %v", idx, arg)
		}
	}
}
