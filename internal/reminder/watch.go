package reminder

import "github.com/kenta1114/my-todo-app/internal/model"

// Observable is a Source that reports its mutations.
type Observable interface {
	Source
	OnChange(func(model.Change))
}

// Watch reconciles the engine after every mutation of src.
func (e *Engine) Watch(src Observable) {
	src.OnChange(func(c model.Change) {
		if c.Kind == model.ChangeDeleted {
			e.ClearOne(c.TaskID)
		}
		e.Reconcile(src.List())
	})
}
