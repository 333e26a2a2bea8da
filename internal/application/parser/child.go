package parser

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/log4j_xml_reader_service/internal/domain/entity"
)

const (
	DataUserName    = "log4net:UserName"
	DataApplication = "log4japp"
	DataMachineName = "log4jmachinename"
	DataHostName    = "log4net:HostName"

	// ReservedPrefix marks data entries owned by the logging framework.
	ReservedPrefix = "log4net:"
)

// childUpdate is the typed result of decoding one child of an event.
type childUpdate interface {
	apply(record *entity.LogRecord)
}

type messageUpdate struct {
	text string
}

func (u messageUpdate) apply(record *entity.LogRecord) {
	record.Message = u.text
}

type throwableUpdate struct {
	text string
}

func (u throwableUpdate) apply(record *entity.LogRecord) {
	record.Throwable = &u.text
}

type dataUpdate struct {
	name  string
	value string
}

func (u dataUpdate) apply(record *entity.LogRecord) {
	value := u.value
	switch u.name {
	case DataUserName:
		record.UserName = &value
	case DataApplication:
		record.Application = &value
	case DataMachineName:
		record.MachineName = &value
	case DataHostName:
		record.HostName = &value
	default:
		if strings.HasPrefix(u.name, ReservedPrefix) {
			return
		}
		if record.CustomFields == nil {
			record.CustomFields = make(map[string]string)
		}
		// first occurrence wins
		if _, exists := record.CustomFields[u.name]; !exists {
			record.CustomFields[u.name] = value
		}
	}
}

type locationUpdate struct {
	class  *string
	method *string
	file   *string
	line   *string
}

func (u locationUpdate) apply(record *entity.LogRecord) {
	record.Class = u.class
	record.Method = u.method
	record.File = u.file
	record.Line = u.line
}

// decodeChild turns a recognized child element into an update. consumed
// reports whether the element's end token was read; elements that are not
// consumed keep their descendants (log4j:properties/log4j:data) visible to
// the caller.
//
// Text children that fail still return an update carrying a diagnostic
// placeholder. A *syntaxFault error means the decoder cannot continue.
func decodeChild(dec *xml.Decoder, se xml.StartElement) (update childUpdate, consumed bool, err error) {
	if se.Name.Space != Log4jNamespace {
		return nil, false, nil
	}

	switch se.Name.Local {
	case "message":
		text, err := readText(dec, se)
		if err != nil {
			return messageUpdate{text: diagnostic("message", err)}, true, err
		}
		return messageUpdate{text: text}, true, nil
	case "throwable":
		text, err := readText(dec, se)
		if err != nil {
			return throwableUpdate{text: diagnostic("throwable", err)}, true, err
		}
		return throwableUpdate{text: text}, true, nil
	case "data":
		name, ok := attr(se, "name")
		if !ok {
			return nil, false, nil
		}
		value, _ := attr(se, "value")
		return dataUpdate{name: name, value: value}, false, nil
	case "locationInfo":
		return locationUpdate{
			class:  attrPtr(se, "class"),
			method: attrPtr(se, "method"),
			file:   attrPtr(se, "file"),
			line:   attrPtr(se, "line"),
		}, false, nil
	}
	return nil, false, nil
}

// readText returns the character data of se up to its end element. Nested
// elements are skipped and reported as an error once the end is reached.
func readText(dec *xml.Decoder, se xml.StartElement) (string, error) {
	var (
		sb     strings.Builder
		nested error
	)
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", &syntaxFault{err: err}
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			if nested == nil {
				nested = fmt.Errorf("unexpected element <%s> inside <%s>", t.Name.Local, se.Name.Local)
			}
			if err := dec.Skip(); err != nil {
				return "", &syntaxFault{err: err}
			}
		case xml.EndElement:
			if nested != nil {
				return "", nested
			}
			return sb.String(), nil
		}
	}
}

// syntaxFault wraps a tokenizer error after which the decoder cannot
// continue.
type syntaxFault struct {
	err error
}

func (e *syntaxFault) Error() string { return e.err.Error() }
func (e *syntaxFault) Unwrap() error { return e.err }

func diagnostic(field string, err error) string {
	return fmt.Sprintf("error reading %s: %s", field, err)
}

func attr(se xml.StartElement, local string) (string, bool) {
	for _, a := range se.Attr {
		if a.Name.Space == "" && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

func attrPtr(se xml.StartElement, local string) *string {
	v, ok := attr(se, local)
	if !ok {
		return nil
	}
	return &v
}
