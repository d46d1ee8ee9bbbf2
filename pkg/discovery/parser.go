// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"context"
	"encoding/xml"
	"fmt"

	apperrors "github.com/stacklok/wopibroker/pkg/errors"
)

// Document is the parsed discovery manifest.
type Document struct {
	XMLName  xml.Name  `xml:"wopi-discovery"`
	NetZones []NetZone `xml:"net-zone"`
}

// NetZone groups applications reachable through one network zone.
type NetZone struct {
	Name string `xml:"name,attr"`
	Apps []App  `xml:"app"`
}

// App lists the actions offered for one mimetype or application name.
type App struct {
	Name    string   `xml:"name,attr"`
	Actions []Action `xml:"action"`
}

// Action is one editor entry point.
type Action struct {
	Name    string `xml:"name,attr"`
	Ext     string `xml:"ext,attr"`
	Default bool   `xml:"default,attr"`
	URLSrc  string `xml:"urlsrc,attr"`
}

// URLSource is the editor entry point for a mimetype.
type URLSource struct {
	URLSrc string `json:"urlsrc"`
	Action string `json:"action"`
}

// Parse decodes a discovery document.
func Parse(raw []byte) (*Document, error) {
	var doc Document
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse discovery document: %w", err)
	}
	return &doc, nil
}

// URLSource returns the first action registered for mime.
func (d *Document) URLSource(mime string) (URLSource, error) {
	for _, zone := range d.NetZones {
		for _, app := range zone.Apps {
			if app.Name != mime {
				continue
			}
			for _, action := range app.Actions {
				if action.URLSrc != "" {
					return URLSource{URLSrc: action.URLSrc, Action: action.Name}, nil
				}
			}
		}
	}
	return URLSource{}, apperrors.NewNotFoundError(fmt.Sprintf("no editor action for mimetype %q", mime), nil)
}

// Parser resolves editor URLs from the document held by a Manager.
type Parser struct {
	manager Manager
}

// NewParser creates a Parser over manager.
func NewParser(manager Manager) *Parser {
	return &Parser{manager: manager}
}

// URLSource returns the editor entry point for mime.
func (p *Parser) URLSource(ctx context.Context, mime string) (URLSource, error) {
	raw, err := p.manager.Get(ctx)
	if err != nil {
		return URLSource{}, err
	}
	doc, err := Parse(raw)
	if err != nil {
		return URLSource{}, apperrors.NewDiscoveryFetchError("discovery document is malformed", err)
	}
	return doc.URLSource(mime)
}
