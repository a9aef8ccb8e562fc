package outline

import (
	"context"
	"sync"

	"github.com/matzehuels/reasontree/pkg/view"
)

// MediaTypeText is the media type of frames painted by [Engine].
const MediaTypeText = "text/plain; charset=utf-8"

// Engine paints scenes as styled outlines.
type Engine struct{}

// Open implements view.Engine.
func (Engine) Open(_ context.Context, surface view.Surface, scene view.Scene, opts view.Options) (view.Instance, error) {
	rows := Layout(scene)
	inst := &instance{surface: surface, known: make(map[string]struct{}, len(rows))}
	for _, r := range rows {
		inst.known[r.ID] = struct{}{}
	}

	inst.detach = surface.Listen(inst.dispatch)
	frame := view.Frame{MediaType: MediaTypeText, Data: []byte(Render(rows, opts, -1))}
	if err := surface.Paint(frame); err != nil {
		inst.detach()
		return nil, err
	}
	return inst, nil
}

var _ view.Engine = Engine{}

type instance struct {
	surface view.Surface
	known   map[string]struct{}
	detach  func()

	mu      sync.Mutex
	handler func([]string)
	done    bool
}

func (i *instance) OnSelect(fn func([]string)) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.done {
		i.handler = fn
	}
	return nil
}

func (i *instance) Destroy() error {
	i.mu.Lock()
	if i.done {
		i.mu.Unlock()
		return nil
	}
	i.done = true
	i.handler = nil
	i.mu.Unlock()
	i.detach()
	return i.surface.Clear()
}

func (i *instance) dispatch(ids []string) {
	for _, id := range ids {
		if _, ok := i.known[id]; !ok {
			return
		}
	}
	i.mu.Lock()
	fn := i.handler
	i.mu.Unlock()
	if fn != nil {
		fn(append([]string(nil), ids...))
	}
}
