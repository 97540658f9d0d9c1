// Package tagtree rebuilds the tag hierarchy from flat slash-delimited tag paths
// Package tagtree 将扁平的斜杠分隔标签路径重建为层级树
package tagtree

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Separator splits a tag path into segments
const Separator = "/"

// Node one segment of the tag hierarchy
// Node 标签层级中的一个路径段
type Node struct {
	Name        string  `json:"name"`        // Segment name // 路径段名称
	FullPath    string  `json:"fullPath"`    // Path from the root to this node // 从根到本节点的完整路径
	IsActualTag bool    `json:"isActualTag"` // FullPath itself is a tag, not just a folder // 完整路径本身是标签而非仅是目录
	IsSpecial   bool    `json:"isSpecial"`   // Pinned root from configuration // 配置中的置顶根节点
	Children    []*Node `json:"children"`
}

// HasChildren reports whether the node has nested tags
func (n *Node) HasChildren() bool {
	return len(n.Children) > 0
}

// HasActiveDescendant reports whether any tag below n is in active
// HasActiveDescendant 判断 n 之下是否存在处于激活状态的标签
func (n *Node) HasActiveDescendant(active map[string]bool) bool {
	for _, child := range n.Children {
		if active[child.FullPath] || child.HasActiveDescendant(active) {
			return true
		}
	}
	return false
}

// Forest the grouped roots of the tag hierarchy
// Forest 分组后的标签层级根节点
type Forest struct {
	Special []*Node `json:"special"` // Pinned roots, in configured order // 置顶根节点，按配置顺序
	Regular []*Node `json:"regular"` // Other roots, alphabetical // 其余根节点，按字母序
}

// Roots returns special roots followed by regular roots
func (f *Forest) Roots() []*Node {
	roots := make([]*Node, 0, len(f.Special)+len(f.Regular))
	roots = append(roots, f.Special...)
	return append(roots, f.Regular...)
}

// Walk visits every node depth-first, parents before children
// Walk 深度优先遍历全部节点，父节点先于子节点
// Returning false from fn stops descent into that node's children
func (f *Forest) Walk(fn func(n *Node, depth int) bool) {
	var visit func(nodes []*Node, depth int)
	visit = func(nodes []*Node, depth int) {
		for _, n := range nodes {
			if fn(n, depth) {
				visit(n.Children, depth+1)
			}
		}
	}
	visit(f.Roots(), 0)
}

// Find returns the node with the given full path, or nil
// Find 根据完整路径查找节点，未找到返回 nil
func (f *Forest) Find(path string) *Node {
	var found *Node
	f.Walk(func(n *Node, _ int) bool {
		if found != nil {
			return false
		}
		if n.FullPath == path {
			found = n
			return false
		}
		return strings.HasPrefix(path, n.FullPath+Separator)
	})
	return found
}

// Build turns flat tag paths into a forest
// special lists root names that are pinned above the others, in priority order
// Build 将扁平标签路径构建为森林
// special 为置顶根节点名称列表，按优先级排序
func Build(tags []string, special []string) *Forest {
	paths := make([]string, len(tags))
	copy(paths, tags)
	sort.Strings(paths)

	actual := make(map[string]bool, len(paths))
	index := make(map[string]*Node)
	var roots []*Node

	for _, tag := range paths {
		segments := splitPath(tag)
		if len(segments) == 0 {
			continue
		}
		fullPath := strings.Join(segments, Separator)
		actual[fullPath] = true

		var parent *Node
		for i, name := range segments {
			p := strings.Join(segments[:i+1], Separator)
			node, ok := index[p]
			if !ok {
				node = &Node{Name: name, FullPath: p, Children: []*Node{}}
				index[p] = node
				if parent == nil {
					roots = append(roots, node)
				} else {
					parent.Children = append(parent.Children, node)
				}
			}
			parent = node
		}
	}

	for p, node := range index {
		node.IsActualTag = actual[p]
	}

	priority := make(map[string]int, len(special))
	for i, name := range special {
		if _, ok := priority[name]; !ok {
			priority[name] = i
		}
	}

	cl := newCollator()
	forest := &Forest{Special: []*Node{}, Regular: []*Node{}}
	for _, root := range roots {
		cl.sortTree(root.Children)
		if _, ok := priority[root.Name]; ok {
			root.IsSpecial = true
			forest.Special = append(forest.Special, root)
		} else {
			forest.Regular = append(forest.Regular, root)
		}
	}

	cl.sortNodes(forest.Regular)
	sort.SliceStable(forest.Special, func(i, j int) bool {
		return priority[forest.Special[i].Name] < priority[forest.Special[j].Name]
	})

	return forest
}

// splitPath splits a tag path and drops empty segments
func splitPath(tag string) []string {
	var segments []string
	for _, s := range strings.Split(strings.TrimPrefix(strings.TrimSpace(tag), "#"), Separator) {
		if s = strings.TrimSpace(s); s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// collator orders sibling names the way a locale-aware string compare does
type collator struct {
	c *collate.Collator
}

func newCollator() *collator {
	return &collator{c: collate.New(language.Und)}
}

func (cl *collator) less(a, b string) bool {
	if r := cl.c.CompareString(a, b); r != 0 {
		return r < 0
	}
	return a < b
}

func (cl *collator) sortNodes(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return cl.less(nodes[i].Name, nodes[j].Name)
	})
}

func (cl *collator) sortTree(nodes []*Node) {
	cl.sortNodes(nodes)
	for _, n := range nodes {
		cl.sortTree(n.Children)
	}
}
