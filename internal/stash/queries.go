package stash

import "fmt"

// Field selections for each record type.
const (
	performerFields = `id
name
country
details
ethnicity
eye_color
hair_color
height_cm
measurements
piercings
tattoos
tags { name }
weight
alias_list`

	sceneFields = `id
title
details
date
rating100
performers { name rating100 tags { name } }
tags { name }`

	studioFields = `id
name
url
details
rating100
favorite
scene_count
parent_studio { id name }
child_studios { id name }
aliases
tags { name }`

	tagFields = `id
name
description
favorite
scene_count
scene_marker_count
aliases
parents { id name }
children { id name }`
)

// GraphQL operation names, also used as metric and span labels.
const (
	opVersion        = "Version"
	opFindPerformers = "FindPerformers"
	opFindScenes     = "FindScenes"
	opFindStudios    = "FindStudios"
	opFindTags       = "FindTags"
)

const versionQuery = `query Version { version { version } }`

var (
	findPerformersQuery = findQuery(opFindPerformers, "findPerformers", "performer_filter", "PerformerFilterType", "performers", performerFields)
	findScenesQuery     = findQuery(opFindScenes, "findScenes", "scene_filter", "SceneFilterType", "scenes", sceneFields)
	findStudiosQuery    = findQuery(opFindStudios, "findStudios", "studio_filter", "StudioFilterType", "studios", studioFields)
	findTagsQuery       = findQuery(opFindTags, "findTags", "tag_filter", "TagFilterType", "tags", tagFields)
)

func findQuery(op, field, filterArg, filterType, list, fields string) string {
	return fmt.Sprintf(`query %s($filter: FindFilterType, $%s: %s) {
  %s(filter: $filter, %s: $%s) {
    count
    %s {
%s
    }
  }
}`, op, filterArg, filterType, field, filterArg, filterArg, list, fields)
}

// findFilter is Stash's FindFilterType. PerPage -1 returns every match.
type findFilter struct {
	Q       string `json:"q,omitempty"`
	PerPage int    `json:"per_page"`
}

func allResults() findFilter {
	return findFilter{PerPage: -1}
}

func nameSearch(name string) findFilter {
	return findFilter{Q: name, PerPage: -1}
}
