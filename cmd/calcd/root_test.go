package main

import (
	"bytes"
	"context"
	"testing"

	"calculator-widget/internal/calculator"
	"calculator-widget/internal/config"
	"calculator-widget/internal/storage"
)

func TestEvalCommand(t *testing.T) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--env-file", t.TempDir() + "/missing.env", "eval", "1000+234", "5/0", "1,5*2"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	want := "1000+234 = 1.234\n5/0 = Error\n1,5*2 = 3\n"
	if got := out.String(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestEvalCommandLocale(t *testing.T) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--env-file", t.TempDir() + "/missing.env", "eval", "--locale", "en", "1234.5*2", "1,000+1"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if got := out.String(); got != "1234.5*2 = 2,469\n1,000+1 = 1,001\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEvalCommandRequiresExpression(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--env-file", t.TempDir() + "/missing.env", "eval"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error without expressions")
	}
}

func TestNewCalculatorLoadsHistory(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	if err := store.Set(ctx, calculator.HistoryKey, []byte(`[{"expression":"2+2","result":"4"}]`)); err != nil {
		t.Fatal(err)
	}

	calc, err := newCalculator(ctx, config.Config{Locale: "en", HistoryCapacity: 5}, store)
	if err != nil {
		t.Fatalf("newCalculator: %v", err)
	}

	if calc.History().Len() != 1 {
		t.Fatalf("expected 1 loaded entry, got %d", calc.History().Len())
	}
	if calc.Locale() != (calculator.Locale{Group: ",", Decimal: "."}) {
		t.Fatalf("unexpected locale %+v", calc.Locale())
	}
}

func TestNewCalculatorSurvivesCorruptHistory(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	if err := store.Set(ctx, calculator.HistoryKey, []byte(`{`)); err != nil {
		t.Fatal(err)
	}

	calc, err := newCalculator(ctx, config.Config{Locale: "id", HistoryCapacity: 5}, store)
	if err != nil {
		t.Fatalf("newCalculator: %v", err)
	}
	if calc.History().Len() != 0 {
		t.Fatal("expected empty history")
	}
}
