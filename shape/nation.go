package shape

import "github.com/statecraft/nswire/assembly"

// Nation is the subset of nation shards this library binds out of the box.
type Nation struct {
	Name         string        `json:"name"`
	FullName     string        `json:"fullname"`
	Motto        string        `json:"motto"`
	Region       string        `json:"region"`
	Population   int           `json:"population"`
	Freedom      Freedom       `json:"freedom"`
	Endorsements []string      `json:"endorsements"`
	Census       []CensusScale `json:"census"`
	Activity     Activity      `json:"activity"`
}

// Freedom holds the three civil descriptor strings.
type Freedom struct {
	Civil     string `json:"civil"`
	Economy   string `json:"economy"`
	Political string `json:"political"`
}

// Activity groups the login shards the API reports as separate sibling tags.
type Activity struct {
	FirstLogin int    `json:"first_login"`
	LastLogin  int    `json:"last_login"`
	LastSeen   string `json:"last_seen"`
}

// CensusScale is one entry of the census shard; the scale ID arrives as a
// tag attribute, the score as a nested tag.
type CensusScale struct {
	ID    int     `json:"id"`
	Score float64 `json:"score"`
}

// NationShards requests exactly the fields NationAssembler understands.
const NationShards = "name+fullname+motto+region+population+freedom+endorsements+census+firstlogin+lastlogin+lastactivity"

// NationAssembler wires a root assembler for the nation endpoint.
func NationAssembler() *assembly.Assembler {
	a := assembly.New().Root("NATION")
	a.OnTag("NAME", toField("name"))
	a.OnTag("FULLNAME", toField("fullname"))
	a.OnTag("MOTTO", toField("motto"))
	a.OnTag("REGION", toField("region"))
	a.OnTag("POPULATION", toField("population", assembly.ToInt))
	a.OnTag("ENDORSEMENTS", toField("endorsements", assembly.Split(",")))
	// The login shards are sibling tags but belong in one composite, so
	// they share dotted targets.
	a.OnTag("FIRSTLOGIN", toField("activity.first_login", assembly.ToInt))
	a.OnTag("LASTLOGIN", toField("activity.last_login", assembly.ToInt))
	a.OnTag("LASTACTIVITY", toField("activity.last_seen"))
	a.OnTag("FREEDOM", func(p *assembly.Assembler, _ map[string]string) {
		p.Build("freedom").AssignDelegate(freedomAssembler())
	})
	a.OnTag("CENSUS", func(p *assembly.Assembler, _ map[string]string) {
		p.Build("census").AssignDelegate(assembly.NewChildListAssembler("SCALE", censusScale))
	})
	return a
}

// BindNation maps a delivered nation product onto its struct.
func BindNation(v any) (*Nation, error) { return bind[Nation](v) }

func freedomAssembler() *assembly.Assembler {
	f := assembly.New()
	f.OnTag("CIVILRIGHTS", toField("civil"))
	f.OnTag("ECONOMY", toField("economy"))
	f.OnTag("POLITICALFREEDOM", toField("political"))
	return f
}

func censusScale(attrs map[string]string) assembly.Node {
	c := assembly.New()
	if id, err := assembly.ToInt(attrs["id"]); err == nil {
		c.Set("id", id)
	}
	c.OnTag("SCORE", toField("score", assembly.ToFloat))
	return c
}
