package resolve

import (
	"github.com/sunholo/skiff/internal/source"
	"github.com/sunholo/skiff/internal/syntax"
)

// itemPattern is one export/import item matcher. The implicit pattern has
// no name and matches everything.
type itemPattern struct {
	name     string
	implicit bool
	group    bool
	matched  bool
	location source.LocationID
}

// memberPattern matches members of one group; an implicit pattern matches
// every member.
type memberPattern struct {
	implicit  bool
	groupName string
	name      string // ignored when all is set
	all       bool   // matches every member of the group
	matched   bool
	location  source.LocationID
}

// processPatterns expands an export/import list into item and member
// matchers.
func processPatterns(list syntax.EIList) ([]*itemPattern, []*memberPattern) {
	var items []*itemPattern
	var members []*memberPattern
	if list.Kind == syntax.EIImplicitAll {
		items = append(items, &itemPattern{implicit: true})
		members = append(members, &memberPattern{implicit: true})
		return items, members
	}
	for _, entry := range list.Items {
		items = append(items, &itemPattern{
			name:     entry.Item.Name,
			group:    entry.Item.Group,
			location: entry.Location,
		})
		for _, member := range entry.Item.Members {
			members = append(members, &memberPattern{
				groupName: entry.Item.Name,
				name:      member.Name,
				all:       member.All,
				location:  member.Location,
			})
		}
	}
	return items, members
}

// matchItem reports whether a pattern name matches an item. Group patterns
// only match group-shaped items (records and ADTs); single variants are
// never matched by name directly.
func matchItem(name string, group bool, itemName string, item Item) bool {
	switch item.Kind {
	case ItemFunction, ItemClass:
		return itemName == name && !group
	case ItemRecord, ItemAdt:
		return itemName == name
	case ItemVariant, ItemClassMember:
		return false
	}
	return false
}

// checkItem runs every pattern over one item, recording matches.
func checkItem(itemPatterns []*itemPattern, memberPatterns []*memberPattern, itemName string, item Item,
	groupNameOf func(Item) string, matched map[string][]Item) {
	matchedItem := false
	for _, pattern := range itemPatterns {
		if pattern.implicit {
			matchedItem = true
			continue
		}
		if matchItem(pattern.name, pattern.group, itemName, item) {
			matchedItem = true
			pattern.matched = true
		}
	}
	if item.Kind == ItemVariant {
		group := groupNameOf(item)
		for _, pattern := range memberPatterns {
			if pattern.implicit {
				matchedItem = true
				continue
			}
			if pattern.groupName != group {
				continue
			}
			if pattern.all || pattern.name == itemName {
				matchedItem = true
				pattern.matched = true
			}
		}
	}
	if matchedItem {
		matched[itemName] = append(matched[itemName], item)
	}
}

// checkMember runs the member patterns over one data member.
func checkMember(memberPatterns []*memberPattern, memberName string, member DataMember,
	matched map[string][]DataMember) {
	matchedMember := false
	for _, pattern := range memberPatterns {
		if pattern.implicit {
			matchedMember = true
			continue
		}
		if pattern.groupName != member.GroupName {
			continue
		}
		if pattern.all || pattern.name == member.MemberName {
			matchedMember = true
			pattern.matched = true
		}
	}
	if matchedMember {
		matched[memberName] = append(matched[memberName], member)
	}
}
