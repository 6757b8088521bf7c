package markup

import "strings"

// Block is one question document cut out of a larger source.
type Block struct {
	Index  int    `json:"index"`
	Offset int    `json:"offset"` // byte offset of the block in the source
	Line   int    `json:"line"`   // 1-based line of the block start
	Text   string `json:"-"`
}

// Split cuts source into one block per top-level \begin{ex}...\end{ex}.
// Nested ex environments stay inside their parent. An unterminated block runs
// to the end of the source so validators can report it. A source without any
// \begin{ex} yields a single block holding the whole text, unless it is blank.
func Split(source string) []Block {
	var blocks []Block
	locs := EnvPattern.FindAllStringSubmatchIndex(source, -1)
	depth, start := 0, -1
	for _, loc := range locs {
		if source[loc[4]:loc[5]] != OuterEnv {
			continue
		}
		if source[loc[2]:loc[3]] == "begin" {
			if depth == 0 {
				start = loc[0]
			}
			depth++
			continue
		}
		if depth == 0 {
			continue
		}
		depth--
		if depth == 0 {
			blocks = append(blocks, newBlock(source, len(blocks), start, loc[1]))
			start = -1
		}
	}
	if start >= 0 {
		blocks = append(blocks, newBlock(source, len(blocks), start, len(source)))
	}
	if len(blocks) == 0 && strings.TrimSpace(source) != "" {
		blocks = append(blocks, newBlock(source, 0, 0, len(source)))
	}
	return blocks
}

func newBlock(source string, idx, from, to int) Block {
	return Block{
		Index:  idx,
		Offset: from,
		Line:   strings.Count(source[:from], "\n") + 1,
		Text:   source[from:to],
	}
}
