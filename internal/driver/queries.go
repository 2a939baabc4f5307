package driver

const (
	SavePageNodeQuery = `
		MERGE (p:Page {url: $url, run_id: $run_id})
		SET p.title = $title,
			p.h1 = $h1,
			p.word_count = $word_count,
			p.thin_content = $thin_content,
			p.coherence = $coherence,
			p.conversion_type = $conversion_type,
			p.in_degree_editorial = $in_degree_editorial,
			p.out_degree_editorial = $out_degree_editorial,
			p.out_degree_internal = $out_degree_internal,
			p.connectivity_tier = $connectivity_tier,
			p.editorial_ratio = $editorial_ratio,
			p.quality_score = $quality_score,
			p.cluster_id = $cluster_id
		RETURN p.url AS url
	`

	SaveLinkEdgeQuery = `
		MATCH (source:Page {url: $source, run_id: $run_id})
		MATCH (target:Page {url: $destination, run_id: $run_id})
		MERGE (source)-[e:LINKS_TO {anchor: $anchor, dom_path: $dom_path, run_id: $run_id}]->(target)
		SET e.category = $category,
			e.anchor_score = $anchor_score,
			e.anchor_flags = $anchor_flags
		RETURN e.anchor AS anchor
	`

	SaveClusterQuery = `
		MERGE (c:Cluster {id: $id, run_id: $run_id})
		SET c.pillar_candidate = $pillar_candidate,
			c.size = $size
		WITH c
		MATCH (p:Page {run_id: $run_id})
		WHERE p.url IN $members
		MERGE (c)-[r:HAS_MEMBER]->(p)
		RETURN c.id AS id
	`

	GetRunPagesQuery = `
		MATCH (p:Page {run_id: $run_id})
		RETURN p.url AS url, p.quality_score AS quality_score, p.in_degree_editorial AS in_degree_editorial
		ORDER BY p.url
	`
)
