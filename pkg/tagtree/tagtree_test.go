package tagtree

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(nodes []*Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Name)
	}
	return out
}

func TestBuild_ThreeLevelPath(t *testing.T) {
	forest := Build([]string{"a/b/c"}, nil)

	require.Len(t, forest.Regular, 1)
	a := forest.Regular[0]
	assert.Equal(t, "a", a.FullPath)
	assert.False(t, a.IsActualTag)

	require.Len(t, a.Children, 1)
	b := a.Children[0]
	assert.Equal(t, "a/b", b.FullPath)
	assert.False(t, b.IsActualTag)

	require.Len(t, b.Children, 1)
	c := b.Children[0]
	assert.Equal(t, "a/b/c", c.FullPath)
	assert.True(t, c.IsActualTag)
	assert.Empty(t, c.Children)
}

func TestBuild_FolderAndTag(t *testing.T) {
	forest := Build([]string{"work/projects", "work", "work/admin"}, nil)

	require.Len(t, forest.Regular, 1)
	work := forest.Regular[0]
	assert.True(t, work.IsActualTag)
	assert.Equal(t, []string{"admin", "projects"}, names(work.Children))
	assert.True(t, work.HasChildren())
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	in := []string{"z", "a", "m"}
	Build(in, nil)
	assert.Equal(t, []string{"z", "a", "m"}, in)
}

func TestBuild_DuplicatesAndEmptySegments(t *testing.T) {
	forest := Build([]string{"a", "a", "a//b", "", "#c"}, nil)

	assert.Equal(t, []string{"a", "c"}, names(forest.Regular))
	assert.Equal(t, []string{"b"}, names(forest.Regular[0].Children))
	assert.True(t, forest.Find("a/b").IsActualTag)
}

func TestBuild_AlphabeticalOrder(t *testing.T) {
	forest := Build([]string{"banana", "Apple", "cherry", "apple"}, nil)

	// case-insensitive primary order, byte order as a tie-break
	assert.Equal(t, []string{"Apple", "apple", "banana", "cherry"}, names(forest.Regular))
}

func TestBuild_SpecialTags(t *testing.T) {
	special := []string{"产品", "故障检测", "成长"}

	tests := []struct {
		name        string
		tags        []string
		wantSpecial []string
		wantRegular []string
	}{
		{
			name:        "ordered by configured priority",
			tags:        []string{"成长", "work", "产品", "故障检测"},
			wantSpecial: []string{"产品", "故障检测", "成长"},
			wantRegular: []string{"work"},
		},
		{
			name:        "special root with children stays special",
			tags:        []string{"产品/规划", "产品", "misc"},
			wantSpecial: []string{"产品"},
			wantRegular: []string{"misc"},
		},
		{
			name:        "nested leaf with special name is not special",
			tags:        []string{"work/成长"},
			wantSpecial: []string{},
			wantRegular: []string{"work"},
		},
		{
			name:        "no special configured tags present",
			tags:        []string{"b", "a"},
			wantSpecial: []string{},
			wantRegular: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forest := Build(tt.tags, special)
			assert.Equal(t, tt.wantSpecial, names(forest.Special))
			assert.Equal(t, tt.wantRegular, names(forest.Regular))
			for _, n := range forest.Special {
				assert.True(t, n.IsSpecial)
			}
			for _, n := range forest.Regular {
				assert.False(t, n.IsSpecial)
			}
		})
	}

	forest := Build([]string{"work/成长"}, special)
	assert.False(t, forest.Find("work/成长").IsSpecial)
}

func TestForest_FindAndWalk(t *testing.T) {
	forest := Build([]string{"a/b", "a/c/d", "e"}, []string{"e"})

	assert.Equal(t, []string{"e", "a"}, names(forest.Roots()))
	assert.NotNil(t, forest.Find("a/c/d"))
	assert.Nil(t, forest.Find("a/x"))
	assert.Nil(t, forest.Find("ab"))

	var visited []string
	forest.Walk(func(n *Node, depth int) bool {
		visited = append(visited, strings.Repeat(">", depth)+n.FullPath)
		return true
	})
	assert.Equal(t, []string{"e", "a", ">a/b", ">a/c", ">>a/c/d"}, visited)
}

func TestNode_HasActiveDescendant(t *testing.T) {
	forest := Build([]string{"a/b/c", "x"}, nil)
	a := forest.Find("a")

	assert.True(t, a.HasActiveDescendant(map[string]bool{"a/b/c": true}))
	assert.False(t, a.HasActiveDescendant(map[string]bool{"a": true, "x": true}))
}

func TestBuildProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	segment := gen.AlphaString().SuchThat(func(s string) bool { return s != "" })
	tagPath := gen.SliceOfN(3, segment).Map(func(parts []string) string {
		return strings.Join(parts, Separator)
	})

	properties.Property("only input paths are actual tags", prop.ForAll(
		func(tags []string) bool {
			input := make(map[string]bool, len(tags))
			for _, tag := range tags {
				input[tag] = true
			}
			forest := Build(tags, nil)
			ok := true
			forest.Walk(func(n *Node, _ int) bool {
				if n.IsActualTag != input[n.FullPath] {
					ok = false
				}
				return true
			})
			for tag := range input {
				if n := forest.Find(tag); n == nil || !n.IsActualTag {
					ok = false
				}
			}
			return ok
		},
		gen.SliceOf(tagPath),
	))

	properties.Property("children extend their parent's path", prop.ForAll(
		func(tags []string) bool {
			ok := true
			Build(tags, nil).Walk(func(n *Node, _ int) bool {
				for _, child := range n.Children {
					if child.FullPath != n.FullPath+Separator+child.Name {
						ok = false
					}
				}
				return true
			})
			return ok
		},
		gen.SliceOf(tagPath),
	))

	properties.TestingRun(t)
}
