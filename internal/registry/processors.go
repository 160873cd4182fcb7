package registry

import (
	_ "github.com/Alia5/pageproc/internal/pagegen" // Register page processor
)
