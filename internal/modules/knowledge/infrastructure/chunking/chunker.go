package chunking

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cloudwego/eino-ext/components/document/transformer/splitter/recursive"
	"github.com/cloudwego/eino/components/document"
	"github.com/cloudwego/eino/schema"
)

const (
	ModeLines     = "lines"
	ModeRecursive = "recursive"
	ModeFixed     = "fixed"

	MetaChunkIndex = "chunk_index"
)

// Chunker 把文档正文切成检索用片段，长度按 rune 计算
type Chunker struct {
	Mode         string
	ChunkSize    int
	ChunkOverlap int

	initOnce      sync.Once
	initErr       error
	recursiveImpl document.Transformer
}

func New(mode string, size, overlap int) *Chunker {
	if size <= 0 {
		size = 800
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 2
	}
	mode = strings.ToLower(strings.TrimSpace(mode))
	switch mode {
	case ModeRecursive, ModeFixed:
	default:
		mode = ModeLines
	}
	return &Chunker{Mode: mode, ChunkSize: size, ChunkOverlap: overlap}
}

// Lines 按行累积，加入下一行会超过 size 时另起一段；单行超长时整行成段
func (c *Chunker) Lines(text string) []string {
	out := []string{}
	cur := ""
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if runeLen(cur+"\n"+line) > c.ChunkSize {
			if t := strings.TrimSpace(cur); t != "" {
				out = append(out, t)
			}
			cur = line
			continue
		}
		if cur == "" {
			cur = line
		} else {
			cur = cur + "\n" + line
		}
	}
	if t := strings.TrimSpace(cur); t != "" {
		out = append(out, t)
	}
	return out
}

// Fixed 固定窗口带重叠切分
func (c *Chunker) Fixed(text string) []string {
	if text == "" {
		return []string{}
	}
	runes := []rune(text)
	total := len(runes)
	if total <= c.ChunkSize {
		return []string{text}
	}
	step := c.ChunkSize - c.ChunkOverlap
	if step <= 0 {
		step = 1
	}
	var chunks []string
	for i := 0; i < total; i += step {
		end := i + c.ChunkSize
		if end > total {
			end = total
		}
		chunks = append(chunks, string(runes[i:end]))
		if end == total {
			break
		}
	}
	return chunks
}

// Transform 实现 eino document.Transformer，可直接挂到 compose 图里
func (c *Chunker) Transform(ctx context.Context, docs []*schema.Document, _ ...document.TransformerOption) ([]*schema.Document, error) {
	out := make([]*schema.Document, 0, len(docs))
	for _, d := range docs {
		if d == nil {
			continue
		}
		parts, err := c.split(ctx, d.Content)
		if err != nil {
			return nil, err
		}
		for i, p := range parts {
			n := &schema.Document{ID: fmt.Sprintf("%s#%d", d.ID, i), Content: p, MetaData: map[string]any{}}
			for k, v := range d.MetaData {
				n.MetaData[k] = v
			}
			n.MetaData[MetaChunkIndex] = i
			out = append(out, n)
		}
	}
	return out, nil
}

func (c *Chunker) split(ctx context.Context, text string) ([]string, error) {
	switch c.Mode {
	case ModeFixed:
		return c.Fixed(text), nil
	case ModeRecursive:
		return c.recursive(ctx, text)
	default:
		return c.Lines(text), nil
	}
}

func (c *Chunker) recursive(ctx context.Context, text string) ([]string, error) {
	c.initOnce.Do(func() {
		impl, err := recursive.NewSplitter(ctx, &recursive.Config{
			ChunkSize:   c.ChunkSize,
			OverlapSize: c.ChunkOverlap,
			Separators:  []string{"\n\n", "\n", "。", "！", "？", ".", "!", "?", " "},
			LenFunc:     runeLen,
			KeepType:    recursive.KeepTypeEnd,
		})
		if err != nil {
			c.initErr = err
			return
		}
		c.recursiveImpl = impl
	})
	if c.initErr != nil {
		return nil, c.initErr
	}
	frags, err := c.recursiveImpl.Transform(ctx, []*schema.Document{{Content: text}})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(frags))
	for _, f := range frags {
		if f == nil || strings.TrimSpace(f.Content) == "" {
			continue
		}
		out = append(out, f.Content)
	}
	return out, nil
}

var _ document.Transformer = (*Chunker)(nil)

func runeLen(s string) int {
	return len([]rune(s))
}
