// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import "encoding/xml"

// E-utilities XML structures. Only the fields the adapter reads are mapped.
// Text elements that may carry inline markup (<i>, <sup>) are captured as
// raw inner XML and flattened later.

type eSearchResult struct {
	XMLName xml.Name `xml:"eSearchResult"`
	Count   int      `xml:"Count"`
	IDs     []string `xml:"IdList>Id"`
	Errors  []string `xml:"ERROR"`
}

type pubmedArticleSet struct {
	XMLName  xml.Name        `xml:"PubmedArticleSet"`
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	Citation medlineCitation `xml:"MedlineCitation"`
	Data     pubmedData      `xml:"PubmedData"`
}

type medlineCitation struct {
	PMID          string        `xml:"PMID"`
	DateCompleted *pubmedDate   `xml:"DateCompleted"`
	Article       article       `xml:"Article"`
	MeshHeadings  []meshHeading `xml:"MeshHeadingList>MeshHeading"`
	KeywordLists  []keywordList `xml:"KeywordList"`
}

type markup struct {
	Inner string `xml:",innerxml"`
}

type article struct {
	Journal      journal        `xml:"Journal"`
	ArticleTitle markup         `xml:"ArticleTitle"`
	ELocationIDs []eLocationID  `xml:"ELocationID"`
	Abstract     []abstractText `xml:"Abstract>AbstractText"`
	Authors      []author       `xml:"AuthorList>Author"`
	ArticleDates []pubmedDate   `xml:"ArticleDate"`
}

type journal struct {
	Title string `xml:"Title"`
	Issue struct {
		PubDate pubDate `xml:"PubDate"`
	} `xml:"JournalIssue"`
}

type pubDate struct {
	Year        string `xml:"Year"`
	Month       string `xml:"Month"`
	Day         string `xml:"Day"`
	MedlineDate string `xml:"MedlineDate"`
}

type pubmedDate struct {
	Year  string `xml:"Year"`
	Month string `xml:"Month"`
	Day   string `xml:"Day"`
}

type eLocationID struct {
	Type  string `xml:"EIdType,attr"`
	Value string `xml:",chardata"`
}

type abstractText struct {
	Label string `xml:"Label,attr"`
	Inner string `xml:",innerxml"`
}

type author struct {
	LastName string `xml:"LastName"`
	ForeName string `xml:"ForeName"`
}

type meshHeading struct {
	Descriptor string `xml:"DescriptorName"`
}

type keywordList struct {
	Keywords []markup `xml:"Keyword"`
}

type pubmedData struct {
	ArticleIDs []articleID `xml:"ArticleIdList>ArticleId"`
}

type articleID struct {
	Type  string `xml:"IdType,attr"`
	Value string `xml:",chardata"`
}
