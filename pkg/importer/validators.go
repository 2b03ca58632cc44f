package importer

import "mime/multipart"

type ImportCSVPayload struct {
	FormFiles map[string]*multipart.FileHeader `form:"-" json:"-"`
}
