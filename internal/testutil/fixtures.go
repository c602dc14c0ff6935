package testutil

// CatalogHeader is the header row of a catalog CSV file.
const CatalogHeader = "Index,Book Name,Author,Score,Number of Votes\n"

// RatingsHeader is the header row of a ratings CSV file.
const RatingsHeader = "userId,bookIndex,score\n"

// SampleCatalog is a small catalog used across package tests.
const SampleCatalog = CatalogHeader +
	"1,Dune,Frank Herbert,950,4000\n" +
	"2,Hyperion,Dan Simmons,870,2500\n" +
	"3,Children of Dune,Frank Herbert,610,1200\n" +
	"4,The Fall of Hyperion,Dan Simmons,590,\n" +
	"5,Gideon the Ninth,Tamsyn Muir,720,1800\n"

// SampleRatings rates every sample book at least once, Dune twice.
const SampleRatings = RatingsHeader +
	"100001,1,5\n" +
	"100002,2,4\n" +
	"100003,1,3\n" +
	"100004,3,\n" +
	"100005,4,4\n" +
	"100006,5,2\n"

// WriteSampleData writes the sample catalog and ratings into the environment
// and returns their paths.
func (e *TestEnv) WriteSampleData() (catalogPath, ratingsPath string) {
	e.t.Helper()

	e.WriteFileString("books.csv", SampleCatalog)
	e.WriteFileString("ratings.csv", SampleRatings)
	return e.Path("books.csv"), e.Path("ratings.csv")
}
