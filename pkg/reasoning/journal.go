package reasoning

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// JournalFile is the action log name inside a run directory.
const JournalFile = "actions.log"

// Action types written to the journal.
const (
	ActionSessionStart = "session_start"
	ActionContinue     = "continue_reasoning"
	ActionMove         = "move_to_node"
	ActionFinished     = "finished_reasoning"
	ActionSessionEnd   = "session_end"
	ActionError        = "error"
)

// longValue is the length above which a string detail gets its own lines.
const longValue = 100

var (
	heavyRule = strings.Repeat("=", 80)
	lightRule = strings.Repeat("-", 80)
)

// Field is one key/value detail of a journal entry. Fields keep their order.
type Field struct {
	Key   string
	Value any
}

// F builds a Field.
func F(key string, value any) Field { return Field{Key: key, Value: value} }

// Journal appends human-readable action blocks to a log file and mirrors
// them to a second writer, typically the terminal.
type Journal struct {
	mu     sync.Mutex
	file   io.WriteCloser
	mirror io.Writer
	now    func() time.Time
}

// OpenJournal opens (appending) dir/actions.log. A nil mirror writes only
// the file.
func OpenJournal(dir string, mirror io.Writer) (*Journal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, JournalFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &Journal{file: f, mirror: mirror, now: time.Now}, nil
}

// LogAction writes one action block.
func (j *Journal) LogAction(action string, fields ...Field) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", heavyRule)
	fmt.Fprintf(&b, "Timestamp: %s\n", j.now().Format(time.DateTime))
	fmt.Fprintf(&b, "Action Type: %s\n", action)
	fmt.Fprintf(&b, "%s\n", lightRule)
	for _, f := range fields {
		if s, ok := f.Value.(string); ok && len(s) > longValue {
			fmt.Fprintf(&b, "%s:\n%s\n", f.Key, s)
			continue
		}
		fmt.Fprintf(&b, "%s: %v\n", f.Key, f.Value)
	}
	fmt.Fprintf(&b, "%s\n", heavyRule)
	return j.write(b.String())
}

// LogTree writes the compressed tree shown at the start of an iteration.
// iteration counts from zero.
func (j *Journal) LogTree(iteration, maxIterations int, treeJSON []byte) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", heavyRule)
	fmt.Fprintf(&b, "Iteration %d/%d\n", iteration+1, maxIterations)
	fmt.Fprintf(&b, "%s\n", heavyRule)
	b.WriteString("Rendered Tree:\n")
	b.Write(treeJSON)
	fmt.Fprintf(&b, "\n%s\n", heavyRule)
	return j.write(b.String())
}

func (j *Journal) write(s string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, err := io.WriteString(j.file, s); err != nil {
		return err
	}
	if j.mirror != nil {
		_, _ = io.WriteString(j.mirror, s)
	}
	return nil
}

// Close closes the log file.
func (j *Journal) Close() error {
	return j.file.Close()
}
