package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Label    func(LabelArgs) (Result, error)
	Duration func(DurationArgs) (Result, error)
	Delete   func(DeleteArgs) (Result, error)
	Workers  func(WorkersArgs) (Result, error)
	Level    func(LevelArgs) (Result, error)
	Special  func(SpecialArgs) (Result, error)
	Check    func() (Result, error)
	Export   func(PathArgs) (Result, error)
	Import   func(PathArgs) (Result, error)
}

func missing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeLabel:
		if handlers.Label == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Label(*cmd.Label)
	case TypeDuration:
		if handlers.Duration == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Duration(*cmd.Duration)
	case TypeDelete:
		if handlers.Delete == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Delete(*cmd.Delete)
	case TypeWorkers:
		if handlers.Workers == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Workers(*cmd.Workers)
	case TypeLevel:
		if handlers.Level == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Level(*cmd.Level)
	case TypeSpecial:
		if handlers.Special == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Special(*cmd.Special)
	case TypeCheck:
		if handlers.Check == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Check()
	case TypeExport:
		if handlers.Export == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Export(*cmd.Export)
	case TypeImport:
		if handlers.Import == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Import(*cmd.Import)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
