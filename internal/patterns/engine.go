package patterns

import (
	"bytes"
	"errors"
	"sort"
	"sync"

	"github.com/cloudflare/ahocorasick"
)

var errEngineNotReady = errors.New("shape engine not ready")

// Engine pre-screens candidate text with an Aho-Corasick pass over anchor
// keywords before any operation classifier runs. A shape whose anchor is
// absent from the text cannot match, so only the shapes whose anchors were
// seen are confirmed with their compiled pattern.
type Engine struct {
	Matcher         *ahocorasick.Matcher
	KeywordIndexMap map[int][]int // keyword index (from AC) -> shape indices
	FallbackShapes  []int         // shapes with no usable anchor (must always run)
	AllShapes       []CompiledShape
	IsReady         bool
	mu              sync.RWMutex
}

var opEngine = &Engine{
	KeywordIndexMap: make(map[int][]int),
}

var engineOnce sync.Once

// EnsureEngine loads the shape catalogue and builds the prefilter. Safe to
// call from multiple goroutines; only the first call does work.
func EnsureEngine() error {
	var err error
	engineOnce.Do(func() {
		var shapes []CompiledShape
		shapes, err = LoadShapes()
		if err != nil {
			return
		}
		BuildEngine(shapes)
	})
	if err != nil {
		return err
	}
	opEngine.mu.RLock()
	defer opEngine.mu.RUnlock()
	if !opEngine.IsReady {
		return errEngineNotReady
	}
	return nil
}

// BuildEngine compiles the Aho-Corasick matcher from the provided shapes.
func BuildEngine(shapes []CompiledShape) {
	opEngine.mu.Lock()
	defer opEngine.mu.Unlock()

	opEngine.AllShapes = shapes
	opEngine.KeywordIndexMap = make(map[int][]int)
	opEngine.FallbackShapes = nil

	var keywords []string
	keywordToSliceIdx := make(map[string]int)

	for i, s := range shapes {
		kw := ExtractKeyword(s.RegexString)

		if IsValidKeyword(kw) {
			sliceIdx, exists := keywordToSliceIdx[kw]
			if !exists {
				sliceIdx = len(keywords)
				keywords = append(keywords, kw)
				keywordToSliceIdx[kw] = sliceIdx
			}
			opEngine.KeywordIndexMap[sliceIdx] = append(opEngine.KeywordIndexMap[sliceIdx], i)
		} else {
			opEngine.FallbackShapes = append(opEngine.FallbackShapes, i)
		}
	}

	opEngine.Matcher = ahocorasick.NewStringMatcher(keywords)
	opEngine.IsReady = true
}

// candidates returns the indices of shapes worth confirming against content,
// in catalogue order.
func (e *Engine) candidates(content []byte) []int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.IsReady {
		return nil
	}

	picked := make(map[int]bool)
	for _, idx := range e.FallbackShapes {
		picked[idx] = true
	}
	for _, matchIdx := range e.Matcher.Match(content) {
		for _, sIdx := range e.KeywordIndexMap[matchIdx] {
			picked[sIdx] = true
		}
	}

	out := make([]int, 0, len(picked))
	for idx := range picked {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

func (e *Engine) confirm(idx int, entry []byte) bool {
	e.mu.RLock()
	shape := e.AllShapes[idx]
	e.mu.RUnlock()

	// Coregex lazy DFA is not thread-safe, so we must lock per shape
	shape.Mutex.Lock()
	defer shape.Mutex.Unlock()

	// A partial match means the entry merely contains a similar-looking call
	// somewhere in a different body. Only a match covering the entire entry
	// confirms the operation.
	matches := shape.Regex.FindAll(entry, 1)
	return len(matches) == 1 && bytes.Equal(matches[0], entry)
}

// ClassifyOperation decides which of the four helper operations a single
// object-literal entry implements. Similar-but-different bodies (an extra
// statement, a wrong operator, trailing code) confirm against no shape and
// report false.
func ClassifyOperation(entry []byte) (OpKind, bool) {
	entry = bytes.TrimSpace(entry)
	for _, idx := range opEngine.candidates(entry) {
		if opEngine.confirm(idx, entry) {
			opEngine.mu.RLock()
			kind := opEngine.AllShapes[idx].Kind
			opEngine.mu.RUnlock()
			return kind, true
		}
	}
	return "", false
}

// HasAnyOperation reports whether at least one entry of the given object body
// is a recognizable helper operation. Entries are classified one at a time so
// a stray substring elsewhere in the body can never stand in for a whole
// operation. This is the gate that tells a genuine signature helper table
// apart from an unrelated object literal.
func HasAnyOperation(body []byte) bool {
	entries, _ := splitFunctionEntries(string(body))
	for _, entry := range entries {
		if _, ok := ClassifyOperation([]byte(entry)); ok {
			return true
		}
	}
	return false
}
