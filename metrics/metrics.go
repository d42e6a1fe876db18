package metrics

import (
	"github.com/streamingfast/dmetrics"
)

var Metricset = dmetrics.NewSet()

var AssetCount = Metricset.NewGauge("asset_count", "number of assets having an adjacency entry in the liquidity graph")
var EdgeCount = Metricset.NewGauge("edge_count", "number of directed edges in the liquidity graph")
var OrderCount = Metricset.NewGauge("order_count", "number of resting orders across every edge of the liquidity graph")

var GraphMutationCount = Metricset.NewCounter("graph_mutation_count", "number of build, update and drop operations applied to the graph")
var InconsistentGraphCount = Metricset.NewCounter("inconsistent_graph_count", "number of drops referencing an edge the graph never recorded")

var PathQueryCount = Metricset.NewCounter("path_query_count", "number of path finding queries served")
var PathQueryDuration = Metricset.NewHistogram("path_query_duration", "path finding query duration histogram for percentile sampling")

var IngestedEventCount = Metricset.NewCounter("ingested_event_count", "number of offer events applied by the ingestion processor")
var HeadLedgerNumber = Metricset.NewHeadBlockNumber("dexpath")
