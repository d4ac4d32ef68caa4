package chunker

import "github.com/dtnitsch/llm-web-pruner/models"

// atomicKinds maps atomic-boundary tags to the kind of the single chunk
// their whole subtree becomes.
var atomicKinds = map[string]models.ChunkKind{
	"table":  models.KindTable,
	"thead":  models.KindTable,
	"tbody":  models.KindTable,
	"tfoot":  models.KindTable,
	"tr":     models.KindTable,
	"ul":     models.KindList,
	"ol":     models.KindList,
	"dl":     models.KindList,
	"menu":   models.KindList,
	"figure": models.KindMedia,
	"form":   models.KindForm,
}

var headingTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// inlineTags never form a chunk of their own.
var inlineTags = map[string]bool{
	"a": true, "abbr": true, "area": true, "audio": true, "b": true, "bdi": true,
	"bdo": true, "br": true, "button": true, "canvas": true, "cite": true,
	"code": true, "data": true, "del": true, "dfn": true, "em": true,
	"embed": true, "font": true, "i": true, "img": true, "input": true,
	"ins": true, "kbd": true, "label": true, "map": true, "mark": true,
	"meter": true, "nobr": true, "object": true, "optgroup": true,
	"option": true, "output": true, "picture": true, "progress": true,
	"q": true, "rp": true, "rt": true, "ruby": true, "s": true, "samp": true,
	"select": true, "slot": true, "small": true, "source": true, "span": true,
	"strike": true, "strong": true, "sub": true, "sup": true,
	"textarea": true, "time": true, "track": true, "tt": true, "u": true,
	"var": true, "video": true, "wbr": true, "meta": true, "title": true,
}

var curatedKeys = func() map[string]bool {
	m := make(map[string]bool, len(models.CuratedAttributes))
	for _, k := range models.CuratedAttributes {
		m[k] = true
	}
	return m
}()
