package output

import (
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter emits a YAML sequence of records, keys in column order.
type YAMLFormatter struct{}

func (YAMLFormatter) Format(w io.Writer, data Dataset) error {
	headers := normalizeHeaders(data.Headers, data.Rows)
	rows := normalizeRows(data.Rows, len(headers))

	doc := &yaml.Node{Kind: yaml.SequenceNode}
	for _, row := range rows {
		record := &yaml.Node{Kind: yaml.MappingNode}
		for i, header := range headers {
			record.Content = append(record.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: header},
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: row[i]},
			)
		}
		doc.Content = append(doc.Content, record)
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return err
	}
	return encoder.Close()
}
