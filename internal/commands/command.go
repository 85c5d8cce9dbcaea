package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandeepkv93/villageclock/internal/model"
)

type Type string

const (
	TypeLabel    Type = "label"
	TypeDuration Type = "duration"
	TypeDelete   Type = "delete"
	TypeWorkers  Type = "workers"
	TypeLevel    Type = "level"
	TypeSpecial  Type = "special"
	TypeCheck    Type = "check"
	TypeExport   Type = "export"
	TypeImport   Type = "import"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalid(format string, args ...any) error {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

type SpecialField string

const (
	FieldLevel  SpecialField = "level"
	FieldStart  SpecialField = "start"
	FieldTarget SpecialField = "target"
)

type Slot struct {
	Account string
	Section model.Section
	Worker  int
}

type LabelArgs struct {
	Slot
	Text string
}

type DurationArgs struct {
	Slot
	Value string
}

type DeleteArgs struct {
	Account string
	TaskID  string
}

type WorkersArgs struct {
	Account string
	Section model.Section
	Count   int
}

type LevelArgs struct {
	Account string
	Section model.Section
	Label   string
}

type SpecialArgs struct {
	Account string
	Kind    model.SpecialKind
	Field   SpecialField
	Value   string
}

type PathArgs struct {
	Path string
}

type Command struct {
	Type     Type
	Raw      string
	Label    *LabelArgs
	Duration *DurationArgs
	Delete   *DeleteArgs
	Workers  *WorkersArgs
	Level    *LevelArgs
	Special  *SpecialArgs
	Export   *PathArgs
	Import   *PathArgs
}

var sectionAliases = map[string]model.Section{
	"home":    model.SectionHomeVillage,
	"hv":      model.SectionHomeVillage,
	"lab":     model.SectionLaboratory,
	"pet":     model.SectionPetHouse,
	"pets":    model.SectionPetHouse,
	"builder": model.SectionBuilderBase,
	"bb":      model.SectionBuilderBase,
	"star":    model.SectionStarLaboratory,
	"sl":      model.SectionStarLaboratory,
}

// ParseSection accepts a section id or one of its short aliases. Unknown
// names pass through unchanged so the registry can ignore them.
func ParseSection(raw string) model.Section {
	key := strings.ToLower(strings.TrimSpace(raw))
	if s, ok := sectionAliases[key]; ok {
		return s
	}
	return model.Section(key)
}

func ParseSpecialKind(raw string) (model.SpecialKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "apprentice", "worker", "workerapprentice":
		return model.SpecialWorkerApprentice, nil
	case "lab", "assistant", "labassistant":
		return model.SpecialLabAssistant, nil
	default:
		return "", invalid("unknown special task %q (want apprentice or lab)", raw)
	}
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeLabel:
		return parseLabel(input, args)
	case TypeDuration:
		return parseDuration(input, args)
	case TypeDelete:
		return parseDelete(input, args)
	case TypeWorkers:
		return parseWorkers(input, args)
	case TypeLevel:
		return parseLevel(input, args)
	case TypeSpecial:
		return parseSpecial(input, args)
	case TypeCheck:
		return Command{Type: TypeCheck, Raw: input}, nil
	case TypeExport:
		return parsePath(input, TypeExport, args)
	case TypeImport:
		return parsePath(input, TypeImport, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseSlot(name string, args []string) (Slot, error) {
	if len(args) < 3 {
		return Slot{}, invalid("%s requires account, section and worker", name)
	}
	worker, err := strconv.Atoi(args[2])
	if err != nil {
		return Slot{}, invalid("%s: worker must be a number, got %q", name, args[2])
	}
	return Slot{Account: args[0], Section: ParseSection(args[1]), Worker: worker}, nil
}

// parseLabel allows an empty text, which clears the label.
func parseLabel(raw string, args []string) (Command, error) {
	slot, err := parseSlot("label", args)
	if err != nil {
		return Command{}, err
	}
	text := strings.TrimSpace(strings.Join(args[3:], " "))
	return Command{Type: TypeLabel, Raw: raw, Label: &LabelArgs{Slot: slot, Text: text}}, nil
}

func parseDuration(raw string, args []string) (Command, error) {
	slot, err := parseSlot("duration", args)
	if err != nil {
		return Command{}, err
	}
	if len(args) < 4 {
		return Command{}, invalid("duration requires a D-H-M value")
	}
	return Command{Type: TypeDuration, Raw: raw, Duration: &DurationArgs{Slot: slot, Value: strings.Join(args[3:], "")}}, nil
}

func parseDelete(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, invalid("delete requires account and task id")
	}
	return Command{Type: TypeDelete, Raw: raw, Delete: &DeleteArgs{Account: args[0], TaskID: args[1]}}, nil
}

func parseWorkers(raw string, args []string) (Command, error) {
	if len(args) < 3 {
		return Command{}, invalid("workers requires account, section and count")
	}
	n, err := strconv.Atoi(args[2])
	if err != nil {
		return Command{}, invalid("workers: count must be a number, got %q", args[2])
	}
	return Command{Type: TypeWorkers, Raw: raw, Workers: &WorkersArgs{Account: args[0], Section: ParseSection(args[1]), Count: n}}, nil
}

func parseLevel(raw string, args []string) (Command, error) {
	if len(args) < 3 {
		return Command{}, invalid("level requires account, section and label")
	}
	label := strings.Join(args[2:], " ")
	return Command{Type: TypeLevel, Raw: raw, Level: &LevelArgs{Account: args[0], Section: ParseSection(args[1]), Label: label}}, nil
}

func parseSpecial(raw string, args []string) (Command, error) {
	if len(args) < 3 {
		return Command{}, invalid("special requires account, kind and field")
	}
	kind, err := ParseSpecialKind(args[1])
	if err != nil {
		return Command{}, err
	}
	field := SpecialField(strings.ToLower(args[2]))
	value := strings.TrimSpace(strings.Join(args[3:], " "))
	switch field {
	case FieldLevel, FieldStart:
		if value == "" {
			return Command{}, invalid("special %s requires a value", field)
		}
	case FieldTarget:
	default:
		return Command{}, invalid("special field must be level, start or target, got %q", args[2])
	}
	return Command{Type: TypeSpecial, Raw: raw, Special: &SpecialArgs{Account: args[0], Kind: kind, Field: field, Value: value}}, nil
}

func parsePath(raw string, typ Type, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, invalid("%s requires a file path", typ)
	}
	path := &PathArgs{Path: strings.Join(args, " ")}
	cmd := Command{Type: typ, Raw: raw}
	if typ == TypeExport {
		cmd.Export = path
	} else {
		cmd.Import = path
	}
	return cmd, nil
}
