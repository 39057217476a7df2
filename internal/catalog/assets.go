package catalog

import "strings"

// FallbackImage подставляется, когда имя файла неизвестно
const FallbackImage = "estagio.jpg"

// imageFiles — картинки, которые раздаются из /static/imagens
var imageFiles = []string{
	// по типам
	"estagio.jpg", "advogado.jpg", "competicao.jpg", "publicacao.jpg", "congresso.jpg", "eventos.jpg",

	// congressos
	"direitos-humanos.png", "cienciasCriminais.png", "ibdfam.jpg", "fenalaw.png", "consinter.jpg", "intCivil.jpg",
	// eventos
	"emerj.png",
	// estágio
	"inbetta.jpg", "lennonfelix.jpg", "wwf.jpg", "lbca.png", "emais.png",
	// advogados
	"canonical.jpg", "urbano.png", "vianna.png", "qca.png", "machadomeyer.jpg", "zurano.jpg", "radar.png", "mendes.jpg", "contabilizei.jpg",
	// competição
	"persona.jpg", "ibd.jpg", "experience.jpg", "stf.jpg", "vis.jpg", "jessup.jpg",
	// publicação
	"direitoepraxis.png", "cientifica.jpg", "rdb.jpg", "ufv.jpg", "rbdu.png", "rej.png", "idp.jpg",
}

// Assets разрешает поле image публикации в URL
type Assets struct {
	base  string
	known map[string]struct{}
}

func NewAssets(baseURL string) *Assets {
	if baseURL == "" {
		baseURL = "/static/imagens/"
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	known := make(map[string]struct{}, len(imageFiles))
	for _, f := range imageFiles {
		known[f] = struct{}{}
	}
	return &Assets{base: baseURL, known: known}
}

// Resolve: абсолютный URL и путь от корня проходят как есть,
// остальное ищется в таблице с откатом на FallbackImage.
func (a *Assets) Resolve(image string) string {
	image = strings.TrimSpace(image)
	if strings.HasPrefix(image, "http") || strings.HasPrefix(image, "/") {
		return image
	}
	if _, ok := a.known[image]; !ok {
		image = FallbackImage
	}
	return a.base + image
}
