package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/enesfarukkeskin/Yapay-Zeka-Destekli-Report-Agent/internal/analysis"
)

type docxParser struct{}

func (docxParser) CanParse(filename string) bool {
	return hasSuffix(filename, ".docx")
}

// Parse reads word/document.xml: paragraphs become text and w:tbl elements
// become tables. DOCX has no pages, so every table reports page 1.
func (docxParser) Parse(content []byte) (analysis.Input, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return analysis.Input{}, fmt.Errorf("open docx: %w", err)
	}
	var docXML []byte
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return analysis.Input{}, fmt.Errorf("open document.xml: %w", err)
		}
		docXML, err = io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return analysis.Input{}, fmt.Errorf("read document.xml: %w", err)
		}
		break
	}
	if len(docXML) == 0 {
		return analysis.Input{}, fmt.Errorf("document.xml not found in DOCX")
	}
	doc, err := readDocumentXML(docXML)
	if err != nil {
		return analysis.Input{}, err
	}
	return analysis.Input{FileType: "docx", Document: doc}, nil
}

func readDocumentXML(b []byte) (*analysis.Document, error) {
	dec := xml.NewDecoder(bytes.NewReader(b))
	doc := &analysis.Document{}
	var (
		paras     []string
		para      strings.Builder
		inText    bool
		depth     int // table nesting
		table     [][]string
		row       []string
		cell      strings.Builder
		cellParas int
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				para.WriteString("\t")
			case "tbl":
				depth++
				if depth == 1 {
					table = nil
				}
			case "tr":
				if depth == 1 {
					row = nil
				}
			case "tc":
				if depth == 1 {
					cell.Reset()
					cellParas = 0
				}
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				s := strings.TrimSpace(para.String())
				para.Reset()
				if s == "" {
					continue
				}
				paras = append(paras, s)
				if depth == 1 {
					if cellParas > 0 {
						cell.WriteString(" ")
					}
					cell.WriteString(s)
					cellParas++
				}
			case "tc":
				if depth == 1 {
					row = append(row, cell.String())
				}
			case "tr":
				if depth == 1 {
					table = append(table, row)
				}
			case "tbl":
				if depth == 1 && len(table) > 0 {
					doc.Tables = append(doc.Tables, analysis.TableExtract{Page: 1, Rows: table})
				}
				depth--
			}
		}
	}
	doc.Text = strings.Join(paras, "\n")
	return doc, nil
}
