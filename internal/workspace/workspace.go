// Package workspace loads and saves the diagram workspace edited by the
// terminal modeler: tabs with their elements and applied templates.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/catalog/internal/config"
	"github.com/zjrosen/catalog/internal/log"
)

// Tab types understood by the modeler.
const (
	TypeBPMN = "bpmn"
	TypeDMN  = "dmn"
)

// ErrElementNotFound is returned for unknown element ids.
var ErrElementNotFound = errors.New("element not found")

// Workspace is an ordered set of diagram tabs.
type Workspace struct {
	Tabs []Tab `yaml:"tabs"`

	path string
	doc  *yaml.Node
}

// Tab is one open diagram.
type Tab struct {
	Name     string    `yaml:"name"`
	Type     string    `yaml:"type"`
	Elements []Element `yaml:"elements"`
}

// Element is a diagram element.
type Element struct {
	ID       string           `yaml:"id"`
	Type     string           `yaml:"type"`
	Name     string           `yaml:"name,omitempty"`
	Template *AppliedTemplate `yaml:"template,omitempty"`
}

// AppliedTemplate records the template applied to an element.
type AppliedTemplate struct {
	ID      string `yaml:"id"`
	Version int    `yaml:"version,omitempty"`
}

// TemplateID returns the applied template id, or "".
func (e Element) TemplateID() string {
	if e.Template == nil {
		return ""
	}
	return e.Template.ID
}

// Load reads a workspace file.
func Load(path string) (*Workspace, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: workspace path is user configured
	if err != nil {
		return nil, fmt.Errorf("reading workspace: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing workspace %s: %w", path, err)
	}

	ws := &Workspace{path: path, doc: &doc}
	if doc.Kind != 0 {
		if err := doc.Decode(ws); err != nil {
			return nil, fmt.Errorf("decoding workspace %s: %w", path, err)
		}
	}
	if err := ws.validate(); err != nil {
		return nil, fmt.Errorf("workspace %s: %w", path, err)
	}

	log.Debug(log.CatHost, "Workspace loaded", "path", path, "tabs", len(ws.Tabs))
	return ws, nil
}

// Sample returns an in-memory workspace used when no file is configured.
func Sample() *Workspace {
	return &Workspace{
		Tabs: []Tab{
			{
				Name: "order-process.bpmn",
				Type: TypeBPMN,
				Elements: []Element{
					{ID: "Task_FetchOrder", Type: "bpmn:ServiceTask", Name: "Fetch order"},
					{ID: "Task_Charge", Type: "bpmn:ServiceTask", Name: "Charge customer",
						Template: &AppliedTemplate{ID: "io.catalog.payments.charge", Version: 1}},
					{ID: "Task_Notify", Type: "bpmn:SendTask", Name: "Notify customer"},
					{ID: "Task_Review", Type: "bpmn:UserTask", Name: "Review order"},
					{ID: "Task_Archive", Type: "bpmn:Task", Name: "Archive"},
				},
			},
			{
				Name: "discounts.dmn",
				Type: TypeDMN,
				Elements: []Element{
					{ID: "Decision_Discount", Type: "dmn:Decision", Name: "Discount"},
				},
			},
		},
	}
}

// Path returns the file the workspace was loaded from, or "" for in-memory
// workspaces.
func (w *Workspace) Path() string { return w.path }

// Element returns the element with id and the index of its tab.
func (w *Workspace) Element(id string) (*Element, int, error) {
	for ti := range w.Tabs {
		for ei := range w.Tabs[ti].Elements {
			if w.Tabs[ti].Elements[ei].ID == id {
				return &w.Tabs[ti].Elements[ei], ti, nil
			}
		}
	}
	return nil, -1, fmt.Errorf("%w: %s", ErrElementNotFound, id)
}

// ApplyTemplate records templateID at version on the element.
func (w *Workspace) ApplyTemplate(elementID, templateID string, version int) error {
	el, _, err := w.Element(elementID)
	if err != nil {
		return err
	}
	el.Template = &AppliedTemplate{ID: templateID, Version: version}
	return nil
}

// Save writes applied templates back to the workspace file. Comments and
// unrelated content are preserved. In-memory workspaces are not saved.
func (w *Workspace) Save() error {
	if w.path == "" {
		log.Debug(log.CatHost, "Skipping save of in-memory workspace")
		return nil
	}

	root := w.rootMapping()
	tabsNode := mappingValue(root, "tabs")
	if tabsNode == nil || tabsNode.Kind != yaml.SequenceNode {
		tabsNode = &yaml.Node{Kind: yaml.SequenceNode}
		if err := tabsNode.Encode(w.Tabs); err != nil {
			return fmt.Errorf("encoding tabs: %w", err)
		}
		setMappingValue(root, "tabs", tabsNode)
	} else {
		for ti, tabNode := range tabsNode.Content {
			if ti >= len(w.Tabs) {
				break
			}
			elementsNode := mappingValue(tabNode, "elements")
			if elementsNode == nil {
				continue
			}
			for ei, elNode := range elementsNode.Content {
				if ei >= len(w.Tabs[ti].Elements) {
					break
				}
				updateTemplateNode(elNode, w.Tabs[ti].Elements[ei].Template)
			}
		}
	}

	if err := config.WriteDocument(w.path, w.doc); err != nil {
		return fmt.Errorf("saving workspace: %w", err)
	}
	log.Info(log.CatHost, "Workspace saved", "path", w.path)
	return nil
}

func (w *Workspace) validate() error {
	seen := make(map[string]bool)
	for ti, tab := range w.Tabs {
		if tab.Name == "" {
			return fmt.Errorf("tab %d: name is required", ti)
		}
		for ei, el := range tab.Elements {
			if el.ID == "" {
				return fmt.Errorf("tab %d (%s): element %d: id is required", ti, tab.Name, ei)
			}
			if el.Type == "" {
				return fmt.Errorf("tab %d (%s): element %s: type is required", ti, tab.Name, el.ID)
			}
			if seen[el.ID] {
				return fmt.Errorf("duplicate element id %s", el.ID)
			}
			seen[el.ID] = true
		}
	}
	return nil
}

func (w *Workspace) rootMapping() *yaml.Node {
	if w.doc == nil {
		w.doc = &yaml.Node{}
	}
	if w.doc.Kind == 0 {
		w.doc.Kind = yaml.DocumentNode
	}
	if len(w.doc.Content) == 0 || w.doc.Content[0].Kind != yaml.MappingNode {
		w.doc.Content = []*yaml.Node{{Kind: yaml.MappingNode}}
	}
	return w.doc.Content[0]
}

func updateTemplateNode(elNode *yaml.Node, tmpl *AppliedTemplate) {
	if tmpl == nil {
		return
	}
	node := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
		{Kind: yaml.ScalarNode, Value: "id"},
		{Kind: yaml.ScalarNode, Value: tmpl.ID},
	}}
	if tmpl.Version != 0 {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: "version"},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(tmpl.Version)},
		)
	}
	setMappingValue(elNode, "template", node)
}

func mappingValue(mapping *yaml.Node, key string) *yaml.Node {
	if mapping == nil || mapping.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i < len(mapping.Content)-1; i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

func setMappingValue(mapping *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i < len(mapping.Content)-1; i += 2 {
		if mapping.Content[i].Value == key {
			mapping.Content[i+1] = value
			return
		}
	}
	mapping.Content = append(mapping.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, value)
}
