package task

import "github.com/convoy-sh/convoy/internal/config"

// RecoveryRegistry maps a command name to the task run after that command
// hard-fails. Consulted only on hard failure, never on success or graceful
// shutdown, and recovery runs are never themselves subject to recovery.
type RecoveryRegistry struct {
	entries map[string]string
}

// NewRecoveryRegistry builds the registry from config's recover section.
func NewRecoveryRegistry(cfg *config.Config) *RecoveryRegistry {
	r := &RecoveryRegistry{entries: make(map[string]string, len(cfg.Recover))}
	for cmd, name := range cfg.Recover {
		r.Register(cmd, name)
	}
	return r
}

// Register maps command to a recovery task. Last registration wins.
func (r *RecoveryRegistry) Register(command, recoveryTask string) {
	r.entries[command] = recoveryTask
}

// Has reports whether command has a recovery task registered.
func (r *RecoveryRegistry) Has(command string) bool {
	_, ok := r.entries[command]
	return ok
}

// Get returns the recovery task registered for command.
func (r *RecoveryRegistry) Get(command string) (string, bool) {
	name, ok := r.entries[command]
	return name, ok
}
