package tui

import (
	"github.com/matheuskafuri/forge/internal/notes"
)

type notesLoadedMsg struct {
	res notes.LoadResult
}

type noteCreatedMsg struct {
	res notes.CreateResult
}

type noteDeletedMsg struct {
	res notes.DeleteResult
}

type categoriesLoadedMsg struct {
	res notes.CategoriesResult
}

type statusMsg struct {
	text string
}

type errMsg struct {
	err error
}
