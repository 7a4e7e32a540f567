package queries

import (
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/observing-components/pkg/parser"
)

func setupTest(t *testing.T) (*parser.ParserManager, *QueryManager) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	pm := parser.NewParserManager(logger)
	qm := NewQueryManager(logger)
	t.Cleanup(func() {
		_ = qm.Close()
		_ = pm.Close()
	})
	return pm, qm
}

func TestQueryCompilation(t *testing.T) {
	_, qm := setupTest(t)

	for _, g := range []parser.Grammar{parser.GrammarJavaScript, parser.GrammarTSX} {
		t.Run(g.String(), func(t *testing.T) {
			query, err := qm.GetQuery(g, QueryTypeJSX)
			require.NoError(t, err)
			require.NotNil(t, query)

			again, err := qm.GetQuery(g, QueryTypeJSX)
			require.NoError(t, err)
			assert.Same(t, query, again, "compiled queries are cached")
		})
	}

	_, err := qm.GetQuery(parser.GrammarTypeScript, QueryTypeJSX)
	assert.ErrorIs(t, err, ErrNoQuery)

	_, err = qm.GetQuery(parser.GrammarJavaScript, QueryType(42))
	assert.Error(t, err)
}

func TestHasJSX(t *testing.T) {
	pm, qm := setupTest(t)

	testCases := []struct {
		name string
		file string
		src  string
		want bool
	}{
		{"element", "a.jsx", "const A = () => <div>hi</div>;", true},
		{"self closing", "a.js", "render(<App />);", true},
		{"fragment", "a.tsx", "const A = () => <><b/></>;", true},
		{"nested in function body", "a.jsx", "function f() { if (x) { return <p/>; } }", true},
		{"plain javascript", "a.js", "export const add = (a, b) => a + b;", false},
		{"comparison is not jsx", "a.js", "const lt = a < b && c > d;", false},
		{"typescript grammar", "a.ts", "const n: number = 1;", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tree, err := pm.ParseFile([]byte(tc.src), tc.file)
			require.NoError(t, err)
			defer tree.Close()

			got, err := qm.HasJSX(tree, parser.DetectGrammar(tc.file), []byte(tc.src))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := qm.HasJSX(nil, parser.GrammarJavaScript, nil)
	assert.Error(t, err)
}

func TestExecuteQuery(t *testing.T) {
	pm, qm := setupTest(t)
	src := []byte("const A = () => <div><br/></div>;\nconst B = <img/>;\n")

	tree, err := pm.ParseFile(src, "a.jsx")
	require.NoError(t, err)
	defer tree.Close()

	query, err := qm.GetQuery(parser.GrammarJavaScript, QueryTypeJSX)
	require.NoError(t, err)

	matches, err := qm.ExecuteQuery(tree, query, src)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	var texts []string
	for _, m := range matches {
		require.Len(t, m.Captures, 1)
		c := m.Captures[0]
		assert.Equal(t, "jsx", c.Category)
		assert.Equal(t, c.Text, string(src[c.StartByte:c.EndByte]))
		texts = append(texts, c.Text)
	}
	assert.ElementsMatch(t, []string{"<div><br/></div>", "<br/>", "<img/>"}, texts)

	_, err = qm.ExecuteQuery(nil, query, src)
	assert.Error(t, err)
	_, err = qm.ExecuteQuery(tree, nil, src)
	assert.Error(t, err)
}

func TestConcurrentQueryCompilation(t *testing.T) {
	_, qm := setupTest(t)

	var wg sync.WaitGroup
	results := make([]any, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q, err := qm.GetQuery(parser.GrammarTSX, QueryTypeJSX)
			if err == nil {
				results[i] = q
			}
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

func TestParseCaptureName(t *testing.T) {
	testCases := []struct {
		name     string
		category string
		field    string
	}{
		{"jsx.element", "jsx", "element"},
		{"jsx.self_closing", "jsx", "self_closing"},
		{"plain", "plain", ""},
	}
	for _, tc := range testCases {
		category, field := parseCaptureName(tc.name)
		assert.Equal(t, tc.category, category)
		assert.Equal(t, tc.field, field)
	}
}
