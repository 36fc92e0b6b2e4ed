// Package scaffold creates new site skeletons and new content files
// from archetype templates.
package scaffold

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"stanza/internal/config"
)

// CreateNewSite writes a minimal working site into the named directory:
// config, theme templates, stylesheet, and a default archetype.
func CreateNewSite(name string) error {
	fmt.Println("Scaffolding new site in:", name)
	mkdir := func(path string) error { return os.MkdirAll(filepath.Join(name, path), 0755) }
	writeFile := func(path, content string) error {
		return os.WriteFile(filepath.Join(name, path), []byte(content), 0644)
	}
	dirs := []string{"content/posts", "static/css", "static/js", "static/images", "templates/simple", "archetypes"}
	for _, dir := range dirs {
		if err := mkdir(dir); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	files := map[string]string{
		"site.yaml":                    siteYamlContent,
		"content/index.md":             contentIndexMdContent,
		"static/css/style.css":         staticCssContent,
		"templates/simple/layout.html": templateLayoutHtmlContent,
		"templates/simple/header.html": templateHeaderHtmlContent,
		"templates/simple/footer.html": templateFooterHtmlContent,
		"archetypes/default.md":        archetypeDefaultMdContent,
	}
	for path, content := range files {
		if err := writeFile(path, content); err != nil {
			return fmt.Errorf("failed to write file %s: %w", path, err)
		}
	}
	fmt.Println("Site scaffolded. You can now:")
	fmt.Println("  cd", name)
	fmt.Println("  stanza new post \"Hello World\"")
	fmt.Println("  stanza serve")
	return nil
}

// CreateNewContent creates content/<type>s/<slug>.md from the archetype
// for contentType, falling back to archetypes/default.md. New content
// starts as a draft with today's date.
func CreateNewContent(contentType, title, configPath string) error {
	slug := Slugify(title)
	if slug == "" {
		return fmt.Errorf("title %q produces an empty slug", title)
	}
	site, err := config.Load(configPath)
	if err != nil {
		return err
	}

	path := filepath.Join("content", contentType+"s", slug+".md")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("content file %s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	archetypePath := filepath.Join("archetypes", contentType+".md")
	if _, err := os.Stat(archetypePath); err != nil {
		archetypePath = filepath.Join("archetypes", "default.md")
	}
	tmplBytes, err := os.ReadFile(archetypePath)
	if err != nil {
		return fmt.Errorf("could not read archetype file %s: %w", archetypePath, err)
	}

	tmpl, err := template.New("archetype").Parse(string(tmplBytes))
	if err != nil {
		return fmt.Errorf("failed to parse archetype file %s: %w", archetypePath, err)
	}

	data := struct {
		Title  string
		Author string
		Date   string
	}{
		Title:  title,
		Author: site.Author,
		Date:   time.Now().Format("2006-01-02"),
	}

	var output bytes.Buffer
	if err := tmpl.Execute(&output, data); err != nil {
		return fmt.Errorf("failed to execute archetype template: %w", err)
	}

	if err := os.WriteFile(path, output.Bytes(), 0644); err != nil {
		return err
	}

	fmt.Println("Created:", path)
	return nil
}

// Slugify turns a title into a lowercase hyphenated file name.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '-'
		default:
			return -1
		}
	}, s)
	return strings.Trim(s, "-")
}

const siteYamlContent = `title: My Blog
author: Your Name
baseurl: http://localhost:1313
description: A new blog powered by stanza.
theme: simple
`

const contentIndexMdContent = `---
title: Home
description: Welcome to my blog.
---

# Welcome

This is your home page. Edit content/index.md to change it, or delete it
to get a generated listing of your posts instead.
`

const archetypeDefaultMdContent = `---
title: {{.Title}}
date: {{.Date}}
authors:
  - {{.Author}}
draft: true
description:
tags: []
---

Write something meaningful here.
`

const staticCssContent = `body {
  font-family: sans-serif;
  max-width: 700px;
  margin: 2em auto;
  padding: 0 1em;
  line-height: 1.6;
  color: #222;
  background: #fdfdfd;
}
.header-line {
  display: flex;
  justify-content: space-between;
  align-items: baseline;
  gap: 1em;
  margin-bottom: 2em;
  flex-wrap: wrap;
}
.site-name { font-size: 0.9em; color: #777; font-style: italic; }
.page-author { font-size: 0.9em; color: #777; font-style: italic; text-align: right; }
main { margin-bottom: 3em; }
.post-list { margin-left: 1.2em; padding-left: 1.2em; list-style-type: disc; }
.post-list li { margin-bottom: 0.25em; }
.post-list time { font-size: 0.85em; color: #777; margin-left: 0.5em; }
footer { text-align: center; font-size: 0.9em; color: #555; }
footer nav a { color: #444; text-decoration: none; margin: 0 0.5em; }
footer nav a:hover { text-decoration: underline; }
hr { border: none; border-top: 1px solid #ccc; width: 33%; margin: 2em auto; }
`

const templateLayoutHtmlContent = `{{ define "main" }}
<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{ .Title }} | {{ .Site.Title }}</title>
  <link rel="stylesheet" href="{{ .BaseHref }}css/style.css">
{{ if .Description }}
  <meta name="description" content="{{ .Description }}">
{{ else }}
  <meta name="description" content="{{ .Site.Description }}">
{{ end }}
  <link rel="alternate" type="application/rss+xml" title="{{ .Site.Title }}" href="{{ .BaseHref }}feed.xml">
</head>
<body>
  {{ template "header" . }}
  <main>
    {{ .Content }}
  </main>
  {{ template "footer" . }}
</body>
</html>
{{ end }}`

const templateHeaderHtmlContent = `{{ define "header" }}
<header>
  <div class="header-line">
    <div class="site-name">{{ .Site.Title }}</div>
    {{ if .Author }}<div class="page-author">{{ .Author }}</div>{{ end }}
  </div>
</header>
{{ end }}`

const templateFooterHtmlContent = `{{ define "footer" }}
<footer>
  <nav>
    <a href="{{ .BaseHref }}">home</a>
  </nav>
  <div class="copyright">
    &copy; {{ .Site.Title }}
  </div>
</footer>
{{ end }}`
