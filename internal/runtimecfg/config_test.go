package runtimecfg

import "testing"

func TestDefaultAppliesOptionsOverDefaults(t *testing.T) {
	var exitStatus int
	cfg := Default(
		WithQuantumSize(10),
		WithStackLimits(2048, 512),
		WithCollectAfterQuanta(8),
		WithExitCallback(func(status int) { exitStatus = status }),
	)

	if cfg.QuantumSize != 10 {
		t.Errorf("QuantumSize = %d, want 10", cfg.QuantumSize)
	}
	if cfg.MaxStackDepth != 2048 || cfg.MaxFrames != 512 {
		t.Errorf("stack limits = %d/%d, want 2048/512", cfg.MaxStackDepth, cfg.MaxFrames)
	}
	if cfg.CollectAfterQuanta != 8 {
		t.Errorf("CollectAfterQuanta = %d, want 8", cfg.CollectAfterQuanta)
	}
	cfg.OnExit(5)
	if exitStatus != 5 {
		t.Error("WithExitCallback should install OnExit")
	}
}

func TestDefaultWithNoOptionsMatchesZeroConfigHappyPath(t *testing.T) {
	cfg := Default()
	if cfg.QuantumSize != 1 {
		t.Errorf("default QuantumSize = %d, want 1", cfg.QuantumSize)
	}
	if cfg.CollectAfterQuanta != 64 {
		t.Errorf("default CollectAfterQuanta = %d, want 64", cfg.CollectAfterQuanta)
	}
	if cfg.Logger == nil {
		t.Error("default Logger should not be nil")
	}
}
