package main

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Prompts are keyed by their English text; Spanish translations are
// registered in the default catalog.
const (
	msgGreeting      = "Hi %s! %d candidates for %s."
	msgNoCandidates  = "Hi %s! Nothing to review for %s."
	msgBatchPrompt   = "How many items to review? [%d]: "
	msgNotANumber    = "Enter a number between 1 and %d."
	msgDecidePrompt  = "(d)elete, (k)eep, (r)eset, (q)uit: "
	msgLoading       = "loading preview"
	msgNoPreview     = "no preview"
	msgPreview       = "preview %dx%d"
	msgPlayable      = "play: %s"
	msgResults       = "Review finished. %d item(s) marked for deletion:"
	msgNothingMarked = "Review finished. Nothing marked for deletion."
	msgResultsPrompt = "number to unmark, (c)onfirm, (r)eset, (q)uit: "
	msgDeleted       = "Deleted %d item(s)."
	msgDeleteFailed  = "Deletion failed: %v"
	msgRetryPrompt   = "(t)ry again, number to unmark, (q)uit: "
	msgReshuffled    = "Starting over."
	msgBye           = "Nothing was deleted."
)

var spanish = map[string]string{
	msgGreeting:      "¡Hola %s! %d candidatos para %s.",
	msgNoCandidates:  "¡Hola %s! No hay nada que revisar para %s.",
	msgBatchPrompt:   "¿Cuántos elementos quieres revisar? [%d]: ",
	msgNotANumber:    "Escribe un número entre 1 y %d.",
	msgDecidePrompt:  "(d)borrar, (k)conservar, (r)einiciar, (q)salir: ",
	msgLoading:       "cargando vista previa",
	msgNoPreview:     "sin vista previa",
	msgPreview:       "vista previa %dx%d",
	msgPlayable:      "reproducir: %s",
	msgResults:       "Revisión terminada. %d elemento(s) marcados para borrar:",
	msgNothingMarked: "Revisión terminada. No hay nada marcado para borrar.",
	msgResultsPrompt: "número para desmarcar, (c)confirmar, (r)einiciar, (q)salir: ",
	msgDeleted:       "Se borraron %d elemento(s).",
	msgDeleteFailed:  "No se pudo borrar: %v",
	msgRetryPrompt:   "(t)intentar de nuevo, número para desmarcar, (q)salir: ",
	msgReshuffled:    "Empezamos de nuevo.",
	msgBye:           "No se borró nada.",
}

func init() {
	for key, msg := range spanish {
		_ = message.SetString(language.Spanish, key, msg)
	}
}

var supported = []language.Tag{language.English, language.Spanish}

var matcher = language.NewMatcher(supported)

// newPrinter returns a printer for the closest supported language.
func newPrinter(lang string) *message.Printer {
	tag, err := language.Parse(lang)
	if err != nil {
		return message.NewPrinter(language.English)
	}
	_, idx, _ := matcher.Match(tag)
	return message.NewPrinter(supported[idx])
}
