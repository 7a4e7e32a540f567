package plugin

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/observing-components/pkg/ast"
	"github.com/gnana997/observing-components/pkg/exclude"
	"github.com/gnana997/observing-components/pkg/transform"
)

const importLine = "import { observer } from \"mobx-react-lite\";\n"

func newTestPlugin(t *testing.T, payload string) *Plugin {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	p, err := New([]byte(payload), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func defaultPlugin(t *testing.T) *Plugin {
	return newTestPlugin(t, `{"import_path": "mobx-react-lite"}`)
}

func TestProcessSourceEndToEnd(t *testing.T) {
	testCases := []struct {
		name    string
		file    string
		input   string
		want    string
		wrapped int
	}{
		{
			name: "naming gate on function declarations",
			file: "Card.jsx",
			input: "function helper() {\n  return <div />;\n}\n\n" +
				"function Card() {\n  return <div />;\n}\n",
			want: importLine +
				"function helper() {\n  return <div />;\n}\n\n" +
				"const Card = observer(function Card() {\n  return <div />;\n});\n",
			wrapped: 1,
		},
		{
			name:    "call argument wrapped regardless of binding name",
			file:    "page.jsx",
			input:   "const page = withLayout(() => <div/>);\n",
			want:    importLine + "const page = withLayout(observer(() => <div/>));\n",
			wrapped: 1,
		},
		{
			name:    "capitalized arrow",
			file:    "Button.tsx",
			input:   "// button\nconst Button = ({ label }: Props) => (\n  <button>{label}</button>\n);\n",
			want:    importLine + "// button\nconst Button = observer(({ label }: Props) => (\n  <button>{label}</button>\n));\n",
			wrapped: 1,
		},
		{
			name:    "exported arrow uses existing aliased import",
			file:    "Foo.jsx",
			input:   "import { observer as obs } from \"mobx-react-lite\";\nexport const Foo = () => <div/>;\n",
			want:    "import { observer as obs } from \"mobx-react-lite\";\nexport const Foo = obs(() => <div/>);\n",
			wrapped: 1,
		},
		{
			name:    "exported function declaration",
			file:    "Header.jsx",
			input:   "export function Header() { return <header/>; }\n",
			want:    importLine + "export const Header = observer(function Header() { return <header/>; });\n",
			wrapped: 1,
		},
		{
			name:    "default exported function",
			file:    "App.jsx",
			input:   "export default function App() {\n  return <main/>;\n}\n",
			want:    importLine + "export default observer(function App() {\n  return <main/>;\n});\n",
			wrapped: 1,
		},
		{
			name:    "default exported expression",
			file:    "App.jsx",
			input:   "export default memo(() => <div/>);\n",
			want:    importLine + "export default observer(memo(() => <div/>));\n",
			wrapped: 1,
		},
		{
			name:    "lowercase component still gets the import",
			file:    "helper.jsx",
			input:   "const helper = () => <div/>;\n",
			want:    importLine + "const helper = () => <div/>;\n",
			wrapped: 0,
		},
	}

	p := defaultPlugin(t)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, outcome, err := p.ProcessSource([]byte(tc.input), tc.file)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(out))
			assert.Equal(t, tc.wrapped, outcome.Wrapped)
			assert.True(t, outcome.Changed)
			assert.False(t, outcome.Excluded)
		})
	}
}

func TestProcessSourceKeepsOutputParseable(t *testing.T) {
	testCases := []struct {
		name  string
		file  string
		input string
		want  string
		items int
	}{
		{
			name:  "function declaration with trailing comment",
			file:  "Card.jsx",
			input: "function Card() {\n  return <div />;\n} // card\n",
			want:  importLine + "const Card = observer(function Card() {\n  return <div />;\n}); // card\n",
			items: 2,
		},
		{
			name:  "block arrow with trailing comment",
			file:  "Card.jsx",
			input: "const Card = () => {\n  return <div />;\n} // card\n",
			want:  importLine + "const Card = observer(() => {\n  return <div />;\n}) // card\n",
			items: 2,
		},
		{
			name:  "default export with trailing comment",
			file:  "App.tsx",
			input: "export default function App() {\n  return <main/>;\n} // app\n",
			want:  importLine + "export default observer(function App() {\n  return <main/>;\n}); // app\n",
			items: 2,
		},
		{
			name:  "default export followed by array statement",
			file:  "App.jsx",
			input: "export default function App() { return <main/> }\n[1, 2].forEach(register)\n",
			want:  importLine + "export default observer(function App() { return <main/> });\n[1, 2].forEach(register)\n",
			items: 3,
		},
		{
			name:  "default export followed by call statement",
			file:  "App.jsx",
			input: "export default function App() { return <main/> }\n(function setup() {})()\n",
			want:  importLine + "export default observer(function App() { return <main/> });\n(function setup() {})()\n",
			items: 3,
		},
	}

	p := defaultPlugin(t)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, outcome, err := p.ProcessSource([]byte(tc.input), tc.file)
			require.NoError(t, err)
			require.True(t, outcome.Changed)
			assert.Equal(t, tc.want, string(out))

			tree, err := p.parser.ParseFile(out, tc.file)
			require.NoError(t, err)
			defer tree.Close()
			assert.False(t, tree.RootNode().HasError(), "output does not parse:\n%s", out)

			m, err := p.parser.Lower(tree, out, tc.file)
			require.NoError(t, err)
			assert.Len(t, m.Items, tc.items)
		})
	}
}

func TestProcessSourceIsIdempotent(t *testing.T) {
	p := defaultPlugin(t)
	inputs := map[string]string{
		"Card.jsx": "function Card() {\n  return <div />;\n}\nconst Page = withLayout(() => <div/>);\n",
		"App.tsx":  "export default function App(): JSX.Element {\n  return <main/>;\n}\n",
		"Foo.jsx":  "export const Foo = memo(function Foo() { return <p/>; });\n",
	}

	for file, input := range inputs {
		t.Run(file, func(t *testing.T) {
			once, first, err := p.ProcessSource([]byte(input), file)
			require.NoError(t, err)
			require.True(t, first.Changed)

			twice, second, err := p.ProcessSource(once, file)
			require.NoError(t, err)
			assert.Equal(t, string(once), string(twice))
			assert.False(t, second.Changed)
			assert.Zero(t, second.Wrapped)
			assert.False(t, second.ImportInserted)
		})
	}
}

func TestProcessSourceWithoutJSXIsUnchanged(t *testing.T) {
	p := defaultPlugin(t)
	input := "export const add = (a, b) => a + b;\nfunction Widget() { return null; }\n"

	out, outcome, err := p.ProcessSource([]byte(input), "math.js")
	require.NoError(t, err)
	assert.Equal(t, input, string(out))
	assert.False(t, outcome.Changed)
	assert.False(t, outcome.ImportInserted)
}

func TestProcessSourceSkipsFilesWithoutJSX(t *testing.T) {
	p := defaultPlugin(t)
	for _, file := range []string{"store.ts", "Store.tsx", "Store.jsx"} {
		t.Run(file, func(t *testing.T) {
			input := "export const Store = () => ({ count: 0 });\n"
			out, outcome, err := p.ProcessSource([]byte(input), file)
			require.NoError(t, err)
			assert.Equal(t, input, string(out))
			assert.False(t, outcome.Changed)
			assert.Zero(t, outcome.Wrapped)
			assert.Equal(t, file, outcome.Filename)
		})
	}
}

func TestProcessSourceExclusion(t *testing.T) {
	p := newTestPlugin(t, `{"import_path": "mobx-react-lite", "exclude": ["src/legacy/**"]}`)
	input := "const Foo = () => <div/>;\n"

	testCases := []struct {
		file     string
		excluded bool
		strategy exclude.Strategy
	}{
		{"/repo/node_modules/lib/Foo.jsx", true, exclude.StrategyVendored},
		{"/repo/src/legacy/Foo.jsx", true, exclude.StrategyGlobSuffix},
		{"/repo/src/Foo.jsx", false, exclude.StrategyNone},
	}

	for _, tc := range testCases {
		t.Run(tc.file, func(t *testing.T) {
			out, outcome, err := p.ProcessSource([]byte(input), tc.file)
			require.NoError(t, err)
			assert.Equal(t, tc.excluded, outcome.Excluded)
			assert.Equal(t, tc.strategy, outcome.Decision.Strategy)
			if tc.excluded {
				assert.Equal(t, input, string(out))
			} else {
				assert.Equal(t, importLine+"const Foo = observer(() => <div/>);\n", string(out))
			}
		})
	}
}

func TestProcessSourceUnsupportedFile(t *testing.T) {
	p := defaultPlugin(t)
	_, _, err := p.ProcessSource([]byte("body {}"), "styles.css")
	assert.Error(t, err)
}

func TestProcessModule(t *testing.T) {
	p := defaultPlugin(t)
	m := &ast.Module{Items: []ast.Stmt{
		&ast.VarDecl{Kind: "const", Declarators: []*ast.VarDeclarator{{
			Name: "Foo",
			Init: &ast.ArrowExpr{Body: &ast.JSXElement{Text: "<div/>"}},
		}}},
	}}

	out := p.Process(m, Metadata{Filename: "Foo.jsx"})
	require.Len(t, out.Items, 2)
	assert.IsType(t, &ast.ImportDecl{}, out.Items[0])

	excluded := p.Process(m, Metadata{Filename: "/x/node_modules/Foo.jsx"})
	assert.Same(t, m, excluded)
}

func TestProcessObjectPropertiesOptIn(t *testing.T) {
	input := "const views = {\n  List: () => <ul/>,\n  render: () => <div/>,\n};\n"

	off := defaultPlugin(t)
	out, outcome, err := off.ProcessSource([]byte(input), "views.jsx")
	require.NoError(t, err)
	assert.Zero(t, outcome.Wrapped)
	assert.Equal(t, input, string(out), "object literals are left alone by default")

	on := newTestPlugin(t, `{"import_path": "mobx-react-lite", "wrap_object_properties": true}`)
	out, outcome, err = on.ProcessSource([]byte(input), "views.jsx")
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Wrapped)
	assert.Equal(t, importLine+"const views = {\n  List: observer(() => <ul/>),\n  render: () => <div/>,\n};\n", string(out))
}

func TestParseConfig(t *testing.T) {
	testCases := []struct {
		name    string
		payload string
		want    transform.Config
		wantErr bool
	}{
		{
			name:    "defaults",
			payload: `{"import_path": "mobx-react-lite"}`,
			want:    transform.Config{WrapperName: "observer", ImportSource: "mobx-react-lite"},
		},
		{
			name:    "all fields",
			payload: `{"import_name": "track", "import_path": "@app/state", "exclude": ["**/*.test.tsx"], "wrap_object_properties": true}`,
			want: transform.Config{
				WrapperName:          "track",
				ImportSource:         "@app/state",
				ExcludePatterns:      []string{"**/*.test.tsx"},
				WrapObjectProperties: true,
			},
		},
		{name: "missing import_path", payload: `{"import_name": "observer"}`, wantErr: true},
		{name: "blank import_path", payload: `{"import_path": "  "}`, wantErr: true},
		{name: "invalid identifier", payload: `{"import_name": "not-valid", "import_path": "x"}`, wantErr: true},
		{name: "not json", payload: `import_path: x`, wantErr: true},
		{name: "null", payload: `null`, wantErr: true},
		{name: "empty", payload: ``, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tc.payload))
			if tc.wantErr {
				assert.ErrorIs(t, err, transform.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, cfg)
		})
	}
}

func TestMarshalConfigRoundTrips(t *testing.T) {
	cfg := transform.Config{WrapperName: "observer", ImportSource: "mobx-react-lite", ExcludePatterns: []string{"a/**"}}
	data, err := MarshalConfig(cfg)
	require.NoError(t, err)

	back, err := ParseConfig(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	p, err := New([]byte(`{}`), nil)
	assert.Nil(t, p)
	assert.ErrorIs(t, err, transform.ErrInvalidConfig)
}
