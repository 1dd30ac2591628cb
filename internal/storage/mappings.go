package storage

// Index mapping for the shared article index. Headline carries a raw keyword
// sub-field for exact-match aggregation; published_at uses the canonical
// "yyyy-MM-dd HH:mm" form emitted by the date normalizer.

// ArticleMapping is the full index body: settings plus field mappings.
type ArticleMapping struct {
	Settings IndexSettings   `json:"settings"`
	Mappings ArticleMappings `json:"mappings"`
}

// IndexSettings defines index-level settings.
type IndexSettings struct {
	NumberOfShards   int           `json:"number_of_shards"`
	NumberOfReplicas int           `json:"number_of_replicas"`
	Analysis         *AnalysisSpec `json:"analysis,omitempty"`
}

// AnalysisSpec declares the custom analyzers available to text fields.
type AnalysisSpec struct {
	Analyzer map[string]AnalyzerSpec `json:"analyzer"`
}

// AnalyzerSpec configures one analyzer.
type AnalyzerSpec struct {
	Type      string `json:"type"`
	Stopwords string `json:"stopwords,omitempty"`
}

// ArticleMappings defines the field mappings for articles.
type ArticleMappings struct {
	Properties ArticleProperties `json:"properties"`
}

// ArticleProperties defines the properties for each field in the mapping.
type ArticleProperties struct {
	URL         Field `json:"url"`
	Headline    Field `json:"headline"`
	Author      Field `json:"author"`
	Location    Field `json:"location"`
	PublishedAt Field `json:"published_at"`
	Content     Field `json:"content"`
	ScrapedAt   Field `json:"scraped_at"`
	WordCount   Field `json:"word_count"`
	Category    Field `json:"category"`
}

// Field represents an Elasticsearch field mapping.
type Field struct {
	Type     string           `json:"type,omitempty"`
	Analyzer string           `json:"analyzer,omitempty"`
	Format   string           `json:"format,omitempty"`
	Fields   map[string]Field `json:"fields,omitempty"`
}

// bengaliAnalyzer is the analyzer applied to Bengali text fields.
const bengaliAnalyzer = "bengali_analyzer"

// NewArticleMapping creates the article index mapping with default settings.
func NewArticleMapping() *ArticleMapping {
	return &ArticleMapping{
		Settings: IndexSettings{
			NumberOfShards:   1,
			NumberOfReplicas: 1,
			Analysis: &AnalysisSpec{
				Analyzer: map[string]AnalyzerSpec{
					bengaliAnalyzer: {
						Type:      "standard",
						Stopwords: "_none_",
					},
				},
			},
		},
		Mappings: ArticleMappings{
			Properties: ArticleProperties{
				URL: Field{
					Type: "keyword",
				},
				Headline: Field{
					Type:     "text",
					Analyzer: bengaliAnalyzer,
					Fields: map[string]Field{
						"raw": {Type: "keyword"},
					},
				},
				Author: Field{
					Type: "text",
				},
				Location: Field{
					Type: "keyword",
				},
				PublishedAt: Field{
					Type:   "date",
					Format: "yyyy-MM-dd HH:mm||yyyy-MM-dd HH:mm:ss",
				},
				Content: Field{
					Type:     "text",
					Analyzer: bengaliAnalyzer,
				},
				ScrapedAt: Field{
					Type: "date",
				},
				WordCount: Field{
					Type: "integer",
				},
				Category: Field{
					Type: "keyword",
				},
			},
		},
	}
}
