package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add      func(AddArgs) (Result, error)
	Done     func(TargetArgs) (Result, error)
	Edit     func(EditArgs) (Result, error)
	Priority func(PriorityArgs) (Result, error)
	Due      func(DueArgs) (Result, error)
	Delete   func(TargetArgs) (Result, error)
	Find     func(FindArgs) (Result, error)
	Remind   func(RemindArgs) (Result, error)
	Export   func(ExportArgs) (Result, error)
	Import   func(ImportArgs) (Result, error)
	Clear    func(ClearArgs) (Result, error)
	Sample   func() (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		return dispatch(cmd.Type, handlers.Add, cmd.Add)
	case TypeDone:
		return dispatch(cmd.Type, handlers.Done, cmd.Target)
	case TypeEdit:
		return dispatch(cmd.Type, handlers.Edit, cmd.Edit)
	case TypePriority:
		return dispatch(cmd.Type, handlers.Priority, cmd.Priority)
	case TypeDue:
		return dispatch(cmd.Type, handlers.Due, cmd.Due)
	case TypeDelete:
		return dispatch(cmd.Type, handlers.Delete, cmd.Target)
	case TypeFind:
		return dispatch(cmd.Type, handlers.Find, cmd.Find)
	case TypeRemind:
		return dispatch(cmd.Type, handlers.Remind, cmd.Remind)
	case TypeExport:
		return dispatch(cmd.Type, handlers.Export, cmd.Export)
	case TypeImport:
		return dispatch(cmd.Type, handlers.Import, cmd.Import)
	case TypeClear:
		return dispatch(cmd.Type, handlers.Clear, cmd.Clear)
	case TypeSample:
		if handlers.Sample == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Sample()
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func dispatch[T any](typ Type, fn func(T) (Result, error), args *T) (Result, error) {
	if fn == nil {
		return Result{}, missing(typ)
	}
	if args == nil {
		return Result{}, invalid("%s is missing its arguments", typ)
	}
	return fn(*args)
}

func missing(typ Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", typ)}
}
