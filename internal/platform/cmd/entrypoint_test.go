package cmd

import (
	"context"
	"flag"
	"testing"
)

type testConfig struct {
	SimulationID string `env:"CMD_TEST_SIMULATION_ID" envDefault:"sim-local"`
	Component    string `env:"CMD_TEST_COMPONENT" envDefault:"chalith"`
}

func TestParseConfigReadsEnvAndFlags(t *testing.T) {
	t.Setenv("CMD_TEST_SIMULATION_ID", "sim-env")
	t.Setenv("CMD_TEST_COMPONENT", "env-component")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfgRef := testConfig{}
	if err := ParseConfig(&cfgRef); err != nil {
		t.Fatalf("load config defaults: %v", err)
	}
	fs.StringVar(&cfgRef.SimulationID, "simulation-id", cfgRef.SimulationID, "simulation id")
	fs.StringVar(&cfgRef.Component, "component", cfgRef.Component, "component name")

	if err := ParseArgs(fs, []string{"-simulation-id", "sim-flag"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if cfgRef.SimulationID != "sim-flag" {
		t.Fatalf("expected flag value for simulation id, got %q", cfgRef.SimulationID)
	}
	if cfgRef.Component != "env-component" {
		t.Fatalf("expected env default component, got %q", cfgRef.Component)
	}
}

func TestParseConfigRejectsNilTarget(t *testing.T) {
	if err := ParseConfig[testConfig](nil); err == nil {
		t.Fatal("expected parse config to reject nil target")
	}
}

func TestParseArgsRejectsNilParser(t *testing.T) {
	if err := ParseArgs(nil, []string{}); err == nil {
		t.Fatal("expected parse args to reject nil parser")
	}
}

func TestRunWithTelemetryRejectsMissingInputs(t *testing.T) {
	if err := RunWithTelemetry(nil, "", func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected missing service error")
	}
	if err := RunWithTelemetry(nil, ServiceChalith, nil); err == nil {
		t.Fatal("expected missing run function error")
	}
}

func TestRunWithTelemetryRunsLoop(t *testing.T) {
	ran := false
	err := RunWithTelemetry(context.Background(), ServiceChalith, func(context.Context) error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("run with telemetry: %v", err)
	}
	if !ran {
		t.Fatal("expected run function to execute")
	}
}
