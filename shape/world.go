package shape

import "github.com/statecraft/nswire/assembly"

// World is the subset of world shards this library binds out of the box.
type World struct {
	NumNations int         `json:"numnations"`
	Nations    []string    `json:"nations"`
	Happenings []Happening `json:"happenings"`
}

// Happening is one event of the world happenings feed.
type Happening struct {
	ID        int    `json:"id"`
	Timestamp int    `json:"timestamp"`
	Text      string `json:"text"`
}

// WorldShards requests exactly the fields WorldAssembler understands.
const WorldShards = "numnations+nations+happenings"

// WorldAssembler wires a root assembler for the world endpoint.
func WorldAssembler() *assembly.Assembler {
	a := assembly.New().Root("WORLD")
	a.OnTag("NUMNATIONS", toField("numnations", assembly.ToInt))
	a.OnTag("NATIONS", toField("nations", assembly.Split(",")))
	a.OnTag("HAPPENINGS", func(p *assembly.Assembler, _ map[string]string) {
		p.Build("happenings").AssignDelegate(assembly.NewChildListAssembler("EVENT", happeningEvent))
	})
	return a
}

// BindWorld maps a delivered world product onto its struct.
func BindWorld(v any) (*World, error) { return bind[World](v) }

// HappeningsAssembler wires a root assembler that retains only events keep
// accepts. The happenings feed is by far the largest document the read API
// serves, so rejected events are dropped as they finish instead of being
// materialized.
func HappeningsAssembler(keep func(event map[string]any) bool) *assembly.Assembler {
	if keep == nil {
		panic("shape.HappeningsAssembler: nil filter")
	}
	a := assembly.New().Root("WORLD")
	a.OnTag("HAPPENINGS", func(p *assembly.Assembler, _ map[string]string) {
		list := assembly.NewFilteredChildListAssembler("EVENT", happeningEvent, func(v any) bool {
			ev, ok := v.(map[string]any)
			return ok && keep(ev)
		})
		p.Build("happenings").AssignDelegate(list)
	})
	return a
}

// BindHappenings maps a delivered happenings product onto its event slice.
func BindHappenings(v any) ([]Happening, error) {
	w, err := bind[World](v)
	if err != nil {
		return nil, err
	}
	return w.Happenings, nil
}

func happeningEvent(attrs map[string]string) assembly.Node {
	e := assembly.New()
	if id, err := assembly.ToInt(attrs["id"]); err == nil {
		e.Set("id", id)
	}
	e.OnTag("TIMESTAMP", toField("timestamp", assembly.ToInt))
	e.OnTag("TEXT", toField("text"))
	return e
}
