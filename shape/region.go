package shape

import "github.com/statecraft/nswire/assembly"

// Region is the subset of region shards this library binds out of the box.
type Region struct {
	Name       string    `json:"name"`
	NumNations int       `json:"numnations"`
	Nations    []string  `json:"nations"`
	Delegate   string    `json:"delegate"`
	Power      string    `json:"power"`
	Founded    Founded   `json:"founded"`
	Officers   []Officer `json:"officers"`
}

// Founded pairs the human-readable founding text with its timestamp; the API
// reports them as separate sibling tags.
type Founded struct {
	Text      string `json:"text"`
	Timestamp int    `json:"timestamp"`
}

// Officer is one entry of the regional officer roster.
type Officer struct {
	Nation    string `json:"nation"`
	Office    string `json:"office"`
	Authority string `json:"authority"`
	Order     int    `json:"order"`
}

// RegionShards requests exactly the fields RegionAssembler understands.
const RegionShards = "name+numnations+nations+delegate+power+founded+foundedtime+officers"

// RegionAssembler wires a root assembler for the region endpoint.
func RegionAssembler() *assembly.Assembler {
	a := assembly.New().Root("REGION")
	a.OnTag("NAME", toField("name"))
	a.OnTag("NUMNATIONS", toField("numnations", assembly.ToInt))
	a.OnTag("NATIONS", toField("nations", assembly.Split(":")))
	a.OnTag("DELEGATE", toField("delegate"))
	a.OnTag("POWER", toField("power"))
	a.OnTag("FOUNDED", toField("founded.text"))
	a.OnTag("FOUNDEDTIME", toField("founded.timestamp", assembly.ToInt))
	a.OnTag("OFFICERS", func(p *assembly.Assembler, _ map[string]string) {
		p.Build("officers").AssignDelegate(assembly.NewChildListAssembler("OFFICER", regionOfficer))
	})
	return a
}

// BindRegion maps a delivered region product onto its struct.
func BindRegion(v any) (*Region, error) { return bind[Region](v) }

func regionOfficer(_ map[string]string) assembly.Node {
	o := assembly.New()
	o.OnTag("NATION", toField("nation"))
	o.OnTag("OFFICE", toField("office"))
	o.OnTag("AUTHORITY", toField("authority"))
	o.OnTag("ORDER", toField("order", assembly.ToInt))
	return o
}
